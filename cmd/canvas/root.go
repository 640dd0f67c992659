package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/catalog"
	"github.com/meikuraledutech/canvas/config"
	"github.com/meikuraledutech/canvas/editor"
	"github.com/meikuraledutech/canvas/filestore"
	"github.com/meikuraledutech/canvas/internal/ui"
	"github.com/meikuraledutech/canvas/log"
	"github.com/meikuraledutech/canvas/memstore"
	"github.com/meikuraledutech/canvas/postgres"
	"github.com/meikuraledutech/canvas/simulate"
)

var version = "0.1.0"

var (
	configPath string
	logLevel   string
)

// env is everything a command needs, built from the config file.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog canvas.Catalog
}

func loadEnv() (*env, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := log.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, catalog: cat}, nil
}

// openStore connects the configured backend. The returned func releases it.
func (e *env) openStore(ctx context.Context) (canvas.Store, func(), error) {
	switch e.cfg.Store.Backend {
	case config.BackendFile:
		s := filestore.New(e.cfg.Store.Directory)
		return s, func() {}, nil
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, e.cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		return postgres.New(pool), pool.Close, nil
	default:
		return memstore.New(), func() {}, nil
	}
}

// graph returns an empty editor graph configured from the editor section.
func (e *env) graph() *editor.Graph {
	return editor.New(e.catalog,
		editor.WithNodeSize(e.cfg.Editor.NodeWidth, e.cfg.Editor.NodeHeight),
		editor.WithAcyclic(e.cfg.Editor.RejectCycles),
		editor.WithLogger(e.logger),
	)
}

func (e *env) simulator() *simulate.Simulator {
	return simulate.New(
		simulate.WithDelay(e.cfg.Simulation.Delay),
		simulate.WithMaxHops(e.cfg.Simulation.MaxHops),
		simulate.WithLogger(e.logger),
	)
}

var rootCmd = &cobra.Command{
	Use:   "canvas",
	Short: "canvas — workflow canvas editor backend",
	Long: ui.Brand.Sprint("canvas") + " — build, store and simulate node workflows\n" +
		ui.Subtle.Sprint("Validate exported workflows, keep saved copies and trace executions"),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("canvas {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(
		serveCmd(),
		catalogCmd(),
		validateCmd(),
		runCmd(),
		saveCmd(),
		listCmd(),
		showCmd(),
		exportCmd(),
		deleteCmd(),
	)
}

// Execute runs the root command and prints any error.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.Bad.Fprintf(rootCmd.ErrOrStderr(), "  canvas: %v\n", err)
		return err
	}
	return nil
}
