// Package cli provides common CLI initialization utilities shared by
// cmd/paydash and cmd/paydash-export.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"paydash/internal/backend"
	"paydash/internal/config"
	"paydash/internal/core"
	"paydash/internal/log"
	"paydash/internal/presentation"
)

// Setup is everything both binaries need before they start doing work.
type Setup struct {
	Config  *config.Config
	Theme   *config.Theme
	Logger  *log.Logger
	Adapter presentation.Adapter
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	config.LoadEnvFile()
}

// Bootstrap loads configuration and the optional theme, validates them and builds the
// logger and the chart adapter. The logger is installed as the slog default.
func Bootstrap() (*Setup, error) {
	cfg := config.Load()
	theme, err := cfg.ApplyTheme()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := SetupLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	palette, err := presentation.DefaultPalette().With(theme.Series, theme.Tiles)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", cfg.ThemeFile, err)
	}

	return &Setup{
		Config:  cfg,
		Theme:   theme,
		Logger:  logger,
		Adapter: presentation.New(palette),
	}, nil
}

// SetupLogger builds the text logger at the given level and makes it the default.
func SetupLogger(level string) (*log.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := log.DefaultConfig()
	cfg.Level = lvl
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger, nil
}

// LoadDataset opens the configured backend and reads the dataset from it. The caller
// owns the returned BackendResult and must Close it.
func LoadDataset(ctx context.Context, logger *log.Logger, cfg *config.Config) (core.Dataset, *backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return core.Dataset{}, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return core.Dataset{}, nil, err
	}

	ds, err := res.Backend.LoadDataset(ctx)
	if err != nil {
		_ = res.Close()
		return core.Dataset{}, nil, fmt.Errorf("load dataset from %s backend: %w", backendCfg.Type, err)
	}

	first, last := ds.YearSpan()
	logger.WithComponent(log.ComponentStorage).Info("Dataset loaded",
		log.FieldBackend, backendCfg.Type.String(),
		log.FieldRows, ds.Len(),
		"first_year", first,
		"last_year", last)
	return ds, res, nil
}

// SignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
