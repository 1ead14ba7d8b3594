// Package main is the entry point for the ClamCard API server.
// Its sole responsibility is wiring dependencies together and starting the servers.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/clamcard/internal/clock"
	"github.com/pkordes/clamcard/internal/config"
	"github.com/pkordes/clamcard/internal/gtfsfeed"
	"github.com/pkordes/clamcard/internal/handler"
	"github.com/pkordes/clamcard/internal/metrics"
	"github.com/pkordes/clamcard/internal/middleware"
	"github.com/pkordes/clamcard/internal/publisher"
	"github.com/pkordes/clamcard/internal/repo"
	"github.com/pkordes/clamcard/internal/service"
	"github.com/pkordes/clamcard/migrations"
	"github.com/pkordes/clamcard/openapi"
)

const (
	shutdownTimeout = 15 * time.Second
	compressMinSize = 1024
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Default text logger on stderr until ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// --- Database ---------------------------------------------------------
	// pgxpool.New does not open connections; the ping below does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	sqlDB := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(ctx, sqlDB)
	sqlDB.Close()
	if err != nil {
		return err
	}
	logger.Info("migrations applied", "versions", applied)

	// --- Repos and services -----------------------------------------------
	zones := repo.NewZoneRepo(pool)
	stations := repo.NewStationRepo(pool)
	cards := repo.NewCardRepo(pool)
	journeys := repo.NewJourneyRepo(pool)

	catalog := service.NewCatalogService(zones, stations)
	if cfg.GTFSPath != "" {
		if err := importStations(ctx, catalog, cfg.GTFSPath, logger); err != nil {
			return err
		}
	}

	collector := metrics.NewCollector()
	cardOpts := []service.CardOption{
		service.WithRecorder(collector),
		service.WithLogger(logger),
	}
	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, collector, logger)
		if err != nil {
			return err
		}
		defer pub.Close()
		cardOpts = append(cardOpts, service.WithPublisher(pub))
		logger.Info("journey events enabled", "subject", publisher.Subject(cfg.NATSSubjectPrefix))
	}

	cardSvc := service.NewCardService(cards, journeys, stations, clock.System{Location: cfg.Location}, cardOpts...)
	exportSvc := service.NewExportService(cards, journeys)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID, RealIP, metrics, SlogLogger, Recoverer,
	// CORS, body limit, gzip. Recoverer sits inside the logger so a panic is
	// still logged as a 500.
	compress, err := middleware.NewCompressHandler(compressMinSize)
	if err != nil {
		return err
	}

	srvOpts := []handler.Option{
		handler.WithLogger(logger),
		handler.WithOpenAPI(openapi.Document),
	}
	if cfg.TapRatePerSecond > 0 {
		limiter := middleware.NewRateLimiter(cfg.TapRatePerSecond, cfg.TapBurst, middleware.URLParamKey("id"))
		defer limiter.Stop()
		srvOpts = append(srvOpts, handler.WithTapMiddleware(limiter.Handler))
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(collector.Instrument)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(compress)

	handler.NewServer(cardSvc, catalog, exportSvc, srvOpts...).Routes(r)

	// --- HTTP servers -----------------------------------------------------
	servers := []*http.Server{{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}}
	if cfg.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           collector.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logger.Info("server starting", "addr", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", s.Addr, err)
			}
			return nil
		})
	}

	// Graceful shutdown: on signal or the first server failure, give
	// in-flight requests up to shutdownTimeout to complete.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", s.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// importStations loads a GTFS feed and upserts its stops as stations.
func importStations(ctx context.Context, catalog *service.CatalogService, source string, logger *slog.Logger) error {
	stops, err := gtfsfeed.Load(ctx, source)
	if err != nil {
		return err
	}
	res, err := catalog.ImportStations(ctx, stops)
	if err != nil {
		return err
	}
	logger.Info("stations imported",
		"source", source,
		"imported", res.Imported,
		"skipped", len(res.Skipped),
	)
	if len(res.Skipped) > 0 {
		logger.Debug("stations skipped", "codes", res.Skipped)
	}
	return nil
}
