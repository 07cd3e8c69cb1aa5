// jschart renders a page of charts described by a YAML configuration:
// every source is fetched and parsed, chart construction runs through the
// serializing queue, and each chart is written out as SVG plus an optional
// PNG snapshot and visible-domain CSV export.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/distributed-system-analysis/jschart/internal/chartapi"
	"github.com/distributed-system-analysis/jschart/internal/chartconfig"
	"github.com/distributed-system-analysis/jschart/internal/chartdata"
	"github.com/distributed-system-analysis/jschart/internal/chartregistry"
	"github.com/distributed-system-analysis/jschart/internal/debounce"
	"github.com/distributed-system-analysis/jschart/internal/interaction"
	"github.com/distributed-system-analysis/jschart/internal/liveupdate"
	"github.com/distributed-system-analysis/jschart/internal/observability"
	"github.com/distributed-system-analysis/jschart/internal/render"
	"github.com/distributed-system-analysis/jschart/internal/sourceloader"
	"github.com/distributed-system-analysis/jschart/internal/waiting"
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	configPath := flag.String("config", "page.yaml",
		"Path to the YAML page configuration.")
	snapshot := flag.Bool("snapshot", false,
		"Also write a PNG raster snapshot per chart.")
	exportCSV := flag.Bool("export-csv", false,
		"Also write the visible-domain CSV export per chart.")
	liveFor := flag.Duration("live", 0,
		"Keep polling live charts for this long, rewriting their SVGs.")
	logLevel := flag.Int("log-level", 0,
		"Log level. -4: debug, 0: info, 4: warn, 8: error.")
	flag.Parse()

	fs := afero.NewOsFs()

	page, err := chartconfig.Load(fs, *configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	hub, err := observability.NewSentryHub(page.SentryDSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := observability.NewCoreLogger(
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.Level(*logLevel),
		})),
		hub,
	)

	var baseURL *url.URL
	if page.BaseURL != "" {
		baseURL, err = url.Parse(page.BaseURL)
		if err != nil {
			logger.CaptureError(fmt.Errorf("bad base_url: %w", err))
			return 1
		}
	}
	client := chartapi.New(baseURL).NewClient(chartapi.NewRetryClient())
	loader := sourceloader.New(client, logger)

	registry := chartregistry.New()
	for i := range page.Charts {
		opts, err := page.Charts[i].Options()
		if err != nil {
			// A bad chart config is local to that chart; register a
			// failed entry so handles stay aligned with the page order.
			logger.CaptureError(err)
			entry := chartdata.NewChart(chartdata.Options{Title: page.Charts[i].Title})
			h := registry.Register(entry)
			registry.Get(h).Err = err
			continue
		}
		registry.Register(chartdata.NewChart(opts))
	}

	outDir := page.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		logger.CaptureError(fmt.Errorf("creating output dir: %w", err))
		return 1
	}

	builder := chartregistry.NewBuilder(registry, loader, logger)
	builder.PlotWidth = page.PlotWidth
	builder.PlotHeight = page.PlotHeight

	failures := 0
	builder.BuildAll(func(h chartregistry.Handle, entry *chartregistry.Entry) error {
		surface := render.NewSurface(entry.Chart, entry.Axes)
		base := filepath.Join(outDir, fmt.Sprintf("chart-%02d", int(h)))

		svg := surface.RenderSVG(nil, nil)
		if err := afero.WriteFile(fs, base+".svg", []byte(svg), 0o644); err != nil {
			return fmt.Errorf("writing %s.svg: %w", base, err)
		}
		if *snapshot {
			if err := surface.SnapshotPNG(fs, base+".png"); err != nil {
				logger.Warn("snapshot failed", "chart", int(h), "error", err)
			}
		}
		if *exportCSV {
			if err := surface.ExportCSV(fs, base+".csv"); err != nil {
				return fmt.Errorf("exporting %s.csv: %w", base, err)
			}
		}
		logger.Info("chart complete",
			"chart", int(h),
			"datasets", len(entry.Chart.Datasets),
			"loadErrors", entry.Chart.State.LoadErrors)
		return nil
	})

	if *liveFor > 0 {
		runLive(*liveFor, fs, outDir, registry, client, logger)
	}

	for _, entry := range registry.Entries() {
		if entry.Err != nil {
			failures++
		}
	}
	if failures == registry.Len() {
		return 1
	}
	return 0
}

// runLive polls every live-enabled chart until the deadline, rewriting each
// chart's SVG at most once per second no matter how fast samples arrive.
func runLive(
	duration time.Duration,
	fs afero.Fs,
	outDir string,
	registry *chartregistry.Registry,
	client *chartapi.Client,
	logger *observability.CoreLogger,
) {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()
	var group errgroup.Group

	for i, entry := range registry.Entries() {
		h := chartregistry.Handle(i)
		if entry.Err != nil || entry.Axes == nil {
			continue
		}
		interval := entry.Chart.Options.Live.Interval
		if interval <= 0 {
			continue
		}

		controller := interaction.NewController(registry, h)
		surface := render.NewSurface(entry.Chart, entry.Axes)
		path := filepath.Join(outDir, fmt.Sprintf("chart-%02d.svg", int(h)))
		writeSVG := func() {
			svg := surface.RenderSVG(controller.CursorValues(), nil)
			if err := afero.WriteFile(fs, path, []byte(svg), 0o644); err != nil {
				logger.CaptureError(fmt.Errorf("rewriting %s: %w", path, err))
			}
		}

		// All redraw state stays on the scheduler's goroutine: the view
		// change hook fires inside Apply, so the debouncer never needs a
		// lock.
		redraw := debounce.NewDebouncer(rate.Every(time.Second), 1, logger)
		controller.OnViewChange(func() {
			redraw.Trigger(writeSVG)
		})

		scheduler := liveupdate.NewScheduler(
			entry.Chart, controller, client, waiting.NewDelay(interval), logger)
		group.Go(func() error {
			scheduler.Run(ctx)
			redraw.Flush(writeSVG)
			redraw.Stop()
			return nil
		})
	}

	_ = group.Wait()
}
