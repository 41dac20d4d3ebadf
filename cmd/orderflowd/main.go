package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/kalshi-orderflow/internal/config"
	"github.com/rickgao/kalshi-orderflow/internal/hub"
	"github.com/rickgao/kalshi-orderflow/internal/metrics"
	"github.com/rickgao/kalshi-orderflow/internal/monitor"
	"github.com/rickgao/kalshi-orderflow/internal/server"
	"github.com/rickgao/kalshi-orderflow/internal/store"
	"github.com/rickgao/kalshi-orderflow/internal/venue"
	"github.com/rickgao/kalshi-orderflow/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/orderflowd.yaml", "path to config file")
	flag.Parse()

	// Local development convenience; a missing .env is not an error.
	godotenv.Load()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting orderflowd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.RestURL,
		"addr", cfg.Server.Addr,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database and ensure the schema exists. The store is the
	// system of record; without it there is nothing to run.
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	logger.Info("database connected")

	collector := metrics.NewCollector()

	// Create venue client. Missing or unreadable credentials degrade to
	// public data rather than aborting.
	opts := []venue.ClientOption{
		venue.WithLogger(logger),
		venue.WithTimeout(cfg.API.Timeout),
		venue.WithRetries(cfg.API.MaxRetries, time.Second),
	}
	if cfg.API.APIKey != "" && cfg.API.PrivateKeyPath != "" {
		signer, err := venue.NewSigner(cfg.API.APIKey, cfg.API.PrivateKeyPath)
		if err != nil {
			logger.Warn("failed to load signing key, continuing with public data only", "error", err)
		} else {
			opts = append(opts, venue.WithSigner(signer))
		}
	} else {
		logger.Warn("no API credentials configured, continuing with public data only")
	}

	client := venue.NewClient(cfg.API.RestURL, opts...)

	state := client.Connect(ctx)
	collector.SetVenueConnected(state == venue.StateConnected)
	logger.Info("venue connectivity established", "state", state)

	// Broadcast hub for stream subscribers.
	h := hub.New(logger, collector)

	// Start the ingestion loop.
	mon := monitor.New(monitor.Config{
		Interval:    cfg.Monitor.Interval,
		PollTimeout: cfg.Monitor.PollTimeout,
		Concurrency: cfg.Monitor.Concurrency,
		TradeLimit:  cfg.Monitor.TradeLimit,
		DedupWindow: cfg.Monitor.DedupWindow,
		SeedLimit:   cfg.Monitor.SeedLimit,
	}, client, st, h, logger, collector)

	if err := mon.Start(ctx, cfg.Monitor.Markets); err != nil {
		logger.Error("failed to start monitor", "error", err)
		os.Exit(1)
	}

	// Start the HTTP front end.
	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		CORSOrigins: cfg.Server.CORSOrigins,
		MetricsPath: cfg.Metrics.Path,
	}, st, client, mon, h, collector, logger)

	if err := srv.Start(); err != nil {
		logger.Error("failed to start http server", "error", err)
		os.Exit(1)
	}

	logger.Info("orderflowd running", "addr", cfg.Server.Addr)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := mon.Stop(shutdownCtx); err != nil {
		logger.Warn("monitor shutdown timed out", "error", err)
	}
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", "error", err)
	}

	logger.Info("orderflowd stopped")
}
