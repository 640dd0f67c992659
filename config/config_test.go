package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.T().Setenv(DatabaseURLEnv, "")
}

func (suite *ConfigTestSuite) write(name, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (suite *ConfigTestSuite) TestDefault() {
	cfg := Default()
	assert.Equal(suite.T(), ":3000", cfg.Server.Address)
	assert.Equal(suite.T(), BackendMemory, cfg.Store.Backend)
	assert.Equal(suite.T(), 180.0, cfg.Editor.NodeWidth)
	assert.Equal(suite.T(), 48.0, cfg.Editor.NodeHeight)
	assert.Equal(suite.T(), time.Second, cfg.Simulation.Delay)
	assert.NoError(suite.T(), cfg.Validate())
}

func (suite *ConfigTestSuite) TestLoadConfigValid() {
	path := suite.write("canvas.yaml", `
server:
  address: "127.0.0.1:8080"
store:
  backend: file
  directory: /var/lib/canvas
editor:
  node_width: 200
  reject_cycles: true
simulation:
  delay: 250ms
  max_hops: 50
log:
  level: debug
`)
	cfg, err := LoadConfig(path)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), "127.0.0.1:8080", cfg.Server.Address)
	assert.Equal(suite.T(), BackendFile, cfg.Store.Backend)
	assert.Equal(suite.T(), "/var/lib/canvas", cfg.Store.Directory)
	assert.Equal(suite.T(), 200.0, cfg.Editor.NodeWidth)
	// Unset keys keep their defaults.
	assert.Equal(suite.T(), 48.0, cfg.Editor.NodeHeight)
	assert.True(suite.T(), cfg.Editor.RejectCycles)
	assert.Equal(suite.T(), 250*time.Millisecond, cfg.Simulation.Delay)
	assert.Equal(suite.T(), 50, cfg.Simulation.MaxHops)
	assert.Equal(suite.T(), "debug", cfg.Log.Level)
}

func (suite *ConfigTestSuite) TestEditorViewport() {
	path := suite.write("zoom.yaml", "editor:\n  min_zoom: 0.25\n  max_zoom: 4\n  zoom_step: 0.5\n")
	cfg, err := LoadConfig(path)
	suite.Require().NoError(err)

	view := cfg.Editor.Viewport()
	assert.Equal(suite.T(), 1.0, view.Scale)
	assert.Equal(suite.T(), 1.5, view.Zoom(-1))
	for i := 0; i < 10; i++ {
		view.Zoom(-1)
	}
	assert.Equal(suite.T(), 4.0, view.Scale)
	for i := 0; i < 20; i++ {
		view.Zoom(1)
	}
	assert.Equal(suite.T(), 0.25, view.Scale)
}

func (suite *ConfigTestSuite) TestLoadConfigFileNotFound() {
	cfg, err := LoadConfig(filepath.Join(suite.dir, "missing.yaml"))
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
	assert.Contains(suite.T(), err.Error(), "no such file or directory")
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidYAML() {
	path := suite.write("bad.yaml", "server: [unterminated")
	cfg, err := LoadConfig(path)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestPostgresRequiresURL() {
	path := suite.write("pg.yaml", "store:\n  backend: postgres\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(suite.T(), err, DatabaseURLEnv)

	suite.T().Setenv(DatabaseURLEnv, "postgres://localhost/canvas")
	cfg, err := LoadConfig(path)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "postgres://localhost/canvas", cfg.Database.URL)
}

func (suite *ConfigTestSuite) TestUnknownBackend() {
	path := suite.write("x.yaml", "store:\n  backend: redis\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(suite.T(), err, "unknown store backend")
}
