package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/cellsim/internal/batch"
	"github.com/zeusync/cellsim/internal/config"
	"github.com/zeusync/cellsim/internal/core/observability/log"
	"github.com/zeusync/cellsim/internal/injector"
	"github.com/zeusync/cellsim/internal/sim"
	"github.com/zeusync/cellsim/internal/stream"
)

func main() {
	configPath := flag.String("config", "", "YAML scenario file; the built-in phagocytosis scenario when empty")
	seriesPath := flag.String("series", "", "write the population time series as CSV to this file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			log.New(log.LevelInfo).Fatal("loading config", log.String("path", *configPath), log.Error(err))
		}
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		log.New(log.LevelInfo).Fatal("building simulation", log.Error(err))
	}
	logger := app.Logger
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Replicates > 1 {
		results, err := batch.Run(ctx, cfg, cfg.Replicates, cfg.Workers, logger)
		if err != nil {
			logger.Fatal("batch failed", log.Error(err))
		}
		for _, r := range results {
			logger.Info("replicate", log.Int("replicate", r.Replicate), log.Uint64("seed", r.Seed),
				log.Uint64("digest", r.Digest), log.Any("counts", r.Kinds))
		}
		return
	}

	if cfg.Stream.Enabled {
		srv := stream.NewServer(cfg.Stream.Addr, app.Hub, logger)
		if err := srv.Start(); err != nil {
			logger.Fatal("starting stream server", log.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("stream shutdown", log.Error(err))
			}
		}()
		if err := app.Sim.AddRecorder("stream", stream.NewRecorder(app.Sim, app.Hub, cfg.Stream.Every)); err != nil {
			logger.Fatal("scheduling stream recorder", log.Error(err))
		}
	}

	if err := app.Sim.RunUntilEnd(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("simulation failed", log.Error(err))
	}

	if *seriesPath != "" {
		if err := writeSeries(*seriesPath, app.Sim); err != nil {
			logger.Error("writing time series", log.String("path", *seriesPath), log.Error(err))
		}
	}
}

func writeSeries(path string, s *sim.Simulation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sim.WriteTimeSeriesCSV(f, s.TimeSeries()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
