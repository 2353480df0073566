package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evoprobe/evoprobe/internal/catalog"
	"github.com/evoprobe/evoprobe/internal/clock"
	"github.com/evoprobe/evoprobe/internal/config"
	"github.com/evoprobe/evoprobe/internal/db"
	"github.com/evoprobe/evoprobe/internal/fuzz"
	"github.com/evoprobe/evoprobe/internal/state"
	"github.com/evoprobe/evoprobe/internal/transport"
)

const ConfigPath = "config/evoprobe.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config
	cfgPath := ConfigPath
	if p := os.Getenv("EVOPROBE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadProbe(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Configure slog
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("evoprobe starting",
		"gateway", cfg.GatewayURL, "strategy", cfg.Fuzz.Strategy)

	cat := catalog.NewMemory()
	cat.Seed(catalog.Defaults())

	// Connect to database when configured; without it the probe still runs,
	// it just forgets everything on exit.
	var actionRepo *db.ActionRepository
	var discoveryRepo *db.DiscoveryRepository
	if cfg.Database.Enabled() {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		actionRepo = db.NewActionRepository(database)
		discoveryRepo = db.NewDiscoveryRepository(database)

		descriptors, err := actionRepo.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("loading action catalog: %w", err)
		}
		cat.Seed(descriptors)
		slog.Info("action catalog seeded", "actions", len(descriptors))
	}

	clk := clock.System{}
	engine := state.New(cat, clk, state.Options{
		HistoryCapacity: cfg.HistoryCapacity,
		FreshnessWindow: time.Duration(cfg.FreshnessSeconds) * time.Second,
		MarchGrace:      time.Duration(cfg.MarchGraceSeconds) * time.Second,
	})

	gateway := transport.NewHTTPGateway(nil)
	explorer := fuzz.New(gateway, cat, clk)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting state recompute loop")
		return engine.Run(gctx)
	})

	if cfg.Fuzz.Strategy != "" {
		g.Go(func() error {
			summary, err := explorer.Run(gctx, fuzz.Config{
				Strategy:        fuzz.Strategy(cfg.Fuzz.Strategy),
				GatewayURL:      cfg.GatewayURL,
				Parallelism:     cfg.Fuzz.Parallelism,
				Delay:           cfg.Fuzz.Delay(),
				Timeout:         cfg.Fuzz.Timeout(),
				TargetAction:    cfg.Fuzz.TargetAction,
				TargetParameter: cfg.Fuzz.TargetParameter,
			})
			if err != nil {
				return fmt.Errorf("exploration run: %w", err)
			}
			if discoveryRepo != nil && len(summary.Discoveries) > 0 {
				// Persist with a fresh context: gctx may already be done.
				saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := discoveryRepo.SaveAll(saveCtx, summary.Discoveries); err != nil {
					return fmt.Errorf("persisting discoveries: %w", err)
				}
			}
			return nil
		})
	}

	err = g.Wait()

	// Persist the observation catalog on the way out.
	if actionRepo != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if saveErr := actionRepo.SaveAll(saveCtx, cat.All()); saveErr != nil {
			slog.Error("persisting action catalog", "err", saveErr)
		}
	}

	if err != nil {
		return fmt.Errorf("probe error: %w", err)
	}
	return nil
}
