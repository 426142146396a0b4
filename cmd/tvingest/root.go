package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvingest/internal/config"
)

var version = "dev"

var (
	configPath string
	logLevel   string

	// cfg is loaded once before any subcommand runs.
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tvingest",
	Short: "Automated TV rip ingestion",
	Long: `tvingest - automated TV rip ingestion

Detects which episode each ripped title is by running cloud OCR over
sampled clips, transcodes it with HandBrake, and files the result under
its canonical library name.

Run 'tvingest import' for the full pipeline, or 'tvingest batch' to
emit a transcode script for already-identified rips.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("tvingest {{.Version}}\n")
}

// setup loads the config and installs the default logger. A missing
// config file is fine; every setting has a flag or a default.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		if discovered, err := config.Discover(); err == nil {
			path = discovered
		}
	}

	if path == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if errs := loaded.Validate(); len(errs) > 0 {
			return &config.ConfigError{Path: path, Errors: errs}
		}
		cfg = loaded
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("bad log level %q", cfg.Log.Level)
	}
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return nil
}
