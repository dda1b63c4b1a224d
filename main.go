package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"retaildash/aggregation"
	"retaildash/config"
	"retaildash/database"
	"retaildash/export"
	"retaildash/generator"
	"retaildash/logger"
	"retaildash/metrics"
	"retaildash/model"
	"retaildash/parsers"
	"retaildash/render"
	"retaildash/server"
	"retaildash/summary"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "retaildash: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "retaildash: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("run failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	zap.L().Info("starting run", cfg.Fields()...)
	rec := metrics.NewRecorder("retaildash")

	// 1. Load or generate, then aggregate
	ds, report, source, err := buildReport(cfg, rec)
	if err != nil {
		return err
	}
	rec.ObserveKPIs(report.KPIs)

	// 2. CSV exports
	tables := export.Tables(report)
	err = rec.Time("export", func() error {
		if _, err := export.WriteTables(cfg.DataDir(), export.RawTables(ds), cfg.CSV.BOM); err != nil {
			return err
		}
		_, err := export.WriteTables(cfg.DataDir(), tables, cfg.CSV.BOM)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to export tables: %w", err)
	}

	// 3. Charts
	var svgs []string
	err = rec.Time("render", func() (err error) {
		svgs, err = render.WriteCharts(cfg.ChartsDir(), report)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	if cfg.Charts.PNG {
		if _, err := render.Rasterize(ctx, svgs); err != nil {
			zap.L().Warn("png output skipped", zap.Error(err))
		}
	} else {
		zap.L().Debug("png output disabled")
	}

	// 4. Run store
	store, err := database.Open(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer store.Close()
	var runID string
	err = rec.Time("store", func() (err error) {
		runID, err = store.SaveRun(ds, report, database.RunMeta{Seed: cfg.Seed, Source: source})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	// 5. Prometheus textfile
	promPath, err := rec.WriteTextfile(cfg.MetricsDir())
	if err != nil {
		return err
	}

	// 6. Summary
	sumCfg := summary.Config{
		InStockAlert: cfg.InStockAlert,
		OTDAlert:     cfg.OTDAlert,
		ChartsDir:    cfg.ChartsDir(),
		DataDir:      cfg.DataDir(),
	}
	if err := summary.Write(os.Stdout, report, sumCfg); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}
	if err := writeMarkdown(filepath.Join(cfg.OutputDir, "summary.md"), report, sumCfg); err != nil {
		return err
	}

	zap.L().Info("run complete",
		zap.String("run_id", runID),
		zap.Int("charts", len(svgs)),
		zap.String("metrics", promPath),
	)

	// 7. Optional HTTP server
	if cfg.Serve == "" {
		return nil
	}
	srv := &server.Server{
		AsOf:      report.Options.AsOf.Format(model.DateLayout),
		Tables:    tables,
		ChartsDir: cfg.ChartsDir(),
		Store:     store,
		Metrics:   rec,
		BOM:       cfg.CSV.BOM,
	}
	return srv.ListenAndServe(ctx, cfg.Serve)
}

// buildReport loads the raw tables from input_dir, or generates them, and
// computes the metrics. An empty as_of resolves from the data.
func buildReport(cfg *config.Config, rec *metrics.Recorder) (model.Dataset, *aggregation.Report, string, error) {
	var ds model.Dataset
	source := "generated"
	err := rec.Time("load", func() (err error) {
		if cfg.InputDir != "" {
			source = cfg.InputDir
			ds, err = parsers.LoadDataset(cfg.InputDir)
			return err
		}
		ds, err = generator.Generate(generator.Options{
			Seed:      cfg.Seed,
			StartDate: cfg.StartTime(),
			Months:    cfg.Months,
			AsOf:      cfg.AsOfTime(),
			NumPOs:    cfg.NumPOs,
		})
		return err
	})
	if err != nil {
		return ds, nil, source, fmt.Errorf("failed to load dataset: %w", err)
	}
	rec.ObserveDataset(ds)

	if err := model.ValidateSchema(ds); err != nil {
		return ds, nil, source, fmt.Errorf("invalid dataset: %w", err)
	}
	opts := aggregation.DefaultOptions()
	opts.AsOf = cfg.AsOfTime()
	opts.TrailingWeeks = cfg.TrailingWeeks
	opts.OverstockWeeks = cfg.OverstockWeeks
	opts.TargetWeeks = cfg.TargetWeeks
	opts.TopN = cfg.TopN
	opts.DeepDiveCategory = cfg.DeepDiveCategory
	var report *aggregation.Report
	err = rec.Time("aggregate", func() (err error) {
		report, err = aggregation.Compute(ds, opts)
		return err
	})
	if err != nil {
		return ds, nil, source, fmt.Errorf("failed to compute metrics: %w", err)
	}
	return ds, report, source, nil
}

func writeMarkdown(path string, report *aggregation.Report, cfg summary.Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := summary.Markdown(f, report, cfg); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
