package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/canvas/geometry"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// DatabaseURLEnv overrides Database.URL when set.
const DatabaseURLEnv = "DATABASE_URL"

type ServerConfig struct {
	Address string `yaml:"address"`
}

type StoreConfig struct {
	Backend   string `yaml:"backend"`
	Directory string `yaml:"directory"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type CatalogConfig struct {
	// Path to a TOML catalog. Empty means the embedded default.
	Path string `yaml:"path"`
}

type EditorConfig struct {
	NodeWidth    float64 `yaml:"node_width"`
	NodeHeight   float64 `yaml:"node_height"`
	RejectCycles bool    `yaml:"reject_cycles"`
	MinZoom      float64 `yaml:"min_zoom"`
	MaxZoom      float64 `yaml:"max_zoom"`
	ZoomStep     float64 `yaml:"zoom_step"`
}

// Viewport returns a viewport at scale 1 bounded by the configured zoom range.
func (e EditorConfig) Viewport() geometry.Viewport {
	return geometry.Viewport{Scale: 1, Min: e.MinZoom, Max: e.MaxZoom, Step: e.ZoomStep}
}

type SimulationConfig struct {
	Delay   time.Duration `yaml:"delay"`
	MaxHops int           `yaml:"max_hops"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Database   DatabaseConfig   `yaml:"database"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Editor     EditorConfig     `yaml:"editor"`
	Simulation SimulationConfig `yaml:"simulation"`
	Log        LogConfig        `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Address: ":3000"},
		Store:  StoreConfig{Backend: BackendMemory, Directory: "workflows"},
		Editor: EditorConfig{
			NodeWidth:  180,
			NodeHeight: 48,
			MinZoom:    0.5,
			MaxZoom:    2.0,
			ZoomStep:   0.05,
		},
		Simulation: SimulationConfig{Delay: time.Second, MaxHops: 1000},
		Log:        LogConfig{Level: "info"},
	}
}

// LoadConfig loads the configuration from the specified YAML file on top of
// the defaults, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if url := os.Getenv(DatabaseURLEnv); url != "" {
		cfg.Database.URL = url
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at wiring time.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Store.Directory == "" {
			return fmt.Errorf("config: store.directory is required for the file backend")
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("config: database.url or %s is required for the postgres backend", DatabaseURLEnv)
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Editor.MinZoom <= 0 || c.Editor.MaxZoom < c.Editor.MinZoom {
		return fmt.Errorf("config: invalid zoom range [%v, %v]", c.Editor.MinZoom, c.Editor.MaxZoom)
	}
	if c.Simulation.Delay < 0 {
		return fmt.Errorf("config: simulation.delay must not be negative")
	}
	return nil
}
