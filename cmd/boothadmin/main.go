package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"photobooth-admin/config"
)

// defaultConfigPath is used when neither --config nor CONFIG_PATH is set.
const defaultConfigPath = "./config/config.yaml"

// app carries what every subcommand needs once the root command has run.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "boothadmin",
		Short: "Review, print and delete photobooth photos",
		Long: `boothadmin serves the photobooth admin page and offers the same
operations on the command line.

Configuration is read from a YAML file (--config or CONFIG_PATH) and
PHOTOBOOTH_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", path, "path to the YAML configuration file")

	root.AddCommand(newServeCmd(a), newPhotosCmd(a))
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", a.configPath, err)
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	log.Debug("configuration loaded", zap.String("path", a.configPath), zap.String("store_driver", cfg.Store.Driver))
	return nil
}

// newLogger builds a JSON production logger, or a console logger in
// development mode. Both write to stderr.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
