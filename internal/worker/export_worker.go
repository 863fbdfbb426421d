// Package worker writes the dashboard's charts to disk for static hosting.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"paydash/internal/core"
	"paydash/internal/log"
	"paydash/internal/presentation"
	"paydash/internal/render"
)

// DefaultConcurrency bounds parallel chart renders.
const DefaultConcurrency = 4

// DashboardFile is the JSON model written next to the images.
const DashboardFile = "dashboard.json"

// ChartRenderer draws one named chart of a dashboard. *render.Renderer implements it.
type ChartRenderer interface {
	Chart(d presentation.Dashboard, name string, f render.Format) ([]byte, error)
}

// ExportWorker renders every chart of a dataset into a directory.
type ExportWorker struct {
	adapter     presentation.Adapter
	renderer    ChartRenderer
	formats     []render.Format
	concurrency int
	logger      *log.Logger
}

// Options configures an ExportWorker.
type Options struct {
	Adapter  presentation.Adapter
	Renderer ChartRenderer
	// Formats defaults to PNG and SVG.
	Formats     []render.Format
	Concurrency int
	Logger      *log.Logger
}

// Result lists what an export produced.
type Result struct {
	Dir   string
	Files []string
	// Failed names the chart files that could not be rendered.
	Failed []string
	Bytes  int64
}

func NewExportWorker(opts Options) *ExportWorker {
	if len(opts.Formats) == 0 {
		opts.Formats = []render.Format{render.PNG, render.SVG}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New(render.Options{})
	}
	return &ExportWorker{
		adapter:     opts.Adapter,
		renderer:    opts.Renderer,
		formats:     opts.Formats,
		concurrency: opts.Concurrency,
		logger:      opts.Logger.WithComponent(log.ComponentExport),
	}
}

// Export writes each chart in every format plus dashboard.json into dir. A chart that
// fails to render, or a growth chart that cannot be computed, does not stop the rest:
// every other file is written and the failures come back joined, the *core.GrowthError
// among them.
func (w *ExportWorker) Export(ctx context.Context, ds core.Dataset, dir string) (Result, error) {
	res := Result{Dir: dir}

	dashboard, growthErr := w.adapter.Prepare(ds)
	var ge *core.GrowthError
	if growthErr != nil && !errors.As(growthErr, &ge) {
		return res, fmt.Errorf("prepare dashboard: %w", growthErr)
	}
	if ge != nil {
		w.logger.WarnContext(ctx, "Growth rates unavailable, skipping growth chart",
			log.FieldOperation, log.OpGrowth,
			log.FieldMetric, ge.Metric.Slug(),
			log.FieldYear, ge.Year,
			log.FieldError, ge.Error())
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, fmt.Errorf("create export directory: %w", err)
	}

	start := time.Now()
	names := dashboard.ChartNames()
	slots := len(names) * len(w.formats)
	files := make([]string, slots)
	failures := make([]error, slots)
	var written atomic.Int64

	// A failed chart does not stop the others; failures are reported together.
	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for i, name := range names {
		for j, format := range w.formats {
			slot := i*len(w.formats) + j
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				path, n, err := w.writeChart(dashboard, dir, name, format)
				if err != nil {
					failures[slot] = err
					w.logger.ErrorContext(ctx, "Chart export failed",
						log.FieldChart, name,
						log.FieldFormat, string(format),
						log.FieldError, err)
					return nil
				}
				files[slot] = path
				written.Add(n)
				w.logger.DebugContext(ctx, "Chart exported",
					log.FieldChart, name,
					log.FieldFormat, string(format),
					log.FieldBytes, n)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for i, path := range files {
		if path != "" {
			res.Files = append(res.Files, path)
		} else if failures[i] != nil {
			res.Failed = append(res.Failed, names[i/len(w.formats)]+"."+string(w.formats[i%len(w.formats)]))
		}
	}

	path, n, err := writeDashboardJSON(dashboard, dir)
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, path)
	res.Bytes = written.Load() + n

	w.logger.InfoContext(ctx, "Export finished",
		"dir", dir,
		"files", len(res.Files),
		"failed", len(res.Failed),
		log.FieldBytes, res.Bytes,
		log.FieldDuration, time.Since(start).Milliseconds(),
		log.FieldOperation, log.OpExport)

	errs := failures
	if ge != nil {
		errs = append(errs, ge)
	}
	return res, errors.Join(errs...)
}

func (w *ExportWorker) writeChart(d presentation.Dashboard, dir, name string, format render.Format) (string, int64, error) {
	data, err := w.renderer.Chart(d, name, format)
	if err != nil {
		return "", 0, fmt.Errorf("render %s.%s: %w", name, format, err)
	}
	path := filepath.Join(dir, name+"."+string(format))
	if err := writeFileAtomic(path, data); err != nil {
		return "", 0, err
	}
	return path, int64(len(data)), nil
}

func writeDashboardJSON(d presentation.Dashboard, dir string) (string, int64, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("encode dashboard: %w", err)
	}
	path := filepath.Join(dir, DashboardFile)
	if err := writeFileAtomic(path, data); err != nil {
		return "", 0, err
	}
	return path, int64(len(data)), nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".paydash-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
