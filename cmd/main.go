package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/swimchamps/internal/adapters/http/api"
	"github.com/okian/swimchamps/internal/adapters/repository"
	service "github.com/okian/swimchamps/internal/app"
	"github.com/okian/swimchamps/internal/config"
	"github.com/okian/swimchamps/pkg/logger"
	"github.com/okian/swimchamps/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.InitWithWriter(os.Stdout, cfg.LogFormat); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, store, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := startService(ctx, svc, store); err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	apiServer := api.NewServer(svc,
		api.WithMaxLimit(cfg.MaxLeaderboardLimit),
		api.WithCORSOrigins(cfg.CORSOrigins),
	)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Router(ctx),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the standings service from cfg. A database path selects
// the SQLite store; otherwise meets live in memory. The store is returned so
// the caller can close it if the service never starts.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, repository.Store, error) {
	buckets, err := cfg.Buckets()
	if err != nil {
		return nil, nil, err
	}
	opts := []service.Option{
		service.WithLogger(log),
		service.WithPolicy(cfg.Policy()),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithAgeBuckets(buckets),
		service.WithMinCategories(cfg.MinCategories),
		service.WithChampionshipMinCategories(cfg.ChampionshipMinCategories),
	}

	var store repository.Store
	storeOpts := []repository.Option{repository.WithMaxVersions(cfg.MaxSnapshotVersions)}
	if cfg.DatabasePath != "" {
		sqlStore, err := repository.NewSQLiteStore(ctx, cfg.DatabasePath, storeOpts...)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "using sqlite store", logger.String("path", cfg.DatabasePath))
		store = sqlStore
	} else {
		store = repository.NewInMemoryStore(storeOpts...)
	}
	opts = append(opts, service.WithStore(store))
	return service.New(opts...), store, nil
}

// startService starts svc, closing store when the service fails to start.
func startService(ctx context.Context, svc *service.Service, store repository.Store) error {
	if err := svc.Start(ctx); err != nil {
		return errors.Join(err, store.Close())
	}
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the worker gauge.
			_ = svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
