package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"paydash/internal/cli"
	"paydash/internal/core"
	"paydash/internal/log"
	"paydash/internal/render"
	"paydash/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	setup, err := cli.Bootstrap()
	if err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	cfg, logger := setup.Config, setup.Logger

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	ds, res, err := cli.LoadDataset(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to load dataset", log.FieldError, err, log.FieldOperation, log.OpLoad)
		os.Exit(1)
	}
	defer res.Close()

	w := worker.NewExportWorker(worker.Options{
		Adapter:  setup.Adapter,
		Renderer: render.New(render.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}),
		Logger:   logger,
	})

	result, err := w.Export(ctx, ds, cfg.ExportDir)
	var growthErr *core.GrowthError
	switch {
	case len(result.Failed) > 0:
		logger.Error("Export incomplete: charts failed to render",
			log.FieldError, err,
			"failed", result.Failed,
			"files", len(result.Files))
		res.Close()
		os.Exit(1)
	case errors.As(err, &growthErr):
		logger.Error("Export incomplete: growth rates could not be computed",
			log.FieldError, err,
			log.FieldMetric, growthErr.Metric.Slug(),
			log.FieldYear, growthErr.Year,
			"files", len(result.Files))
		res.Close()
		os.Exit(2)
	case err != nil:
		logger.Error("Export failed", log.FieldError, err, log.FieldOperation, log.OpExport)
		res.Close()
		os.Exit(1)
	}
}
