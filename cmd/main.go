package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/netstats/internal/adapters/cache"
	"github.com/okian/netstats/internal/adapters/http/api"
	"github.com/okian/netstats/internal/adapters/repository"
	app "github.com/okian/netstats/internal/app"
	"github.com/okian/netstats/internal/config"
	"github.com/okian/netstats/internal/domain/performance"
	"github.com/okian/netstats/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 35 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	requestTimeout    = 30 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("netstats: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	apiServer := api.NewServer(svc,
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithRequestTimeout(requestTimeout),
		api.WithLogger(log.Named("http")),
	)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Router(),
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
			return fmt.Errorf("http server: %w", err)
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

// newService wires the store, cache and engine options from cfg.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	sc, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.SeedPath != "" {
		n, err := seed(ctx, store, sc, cfg.SeedPath)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "dataset imported",
			logger.String("path", cfg.SeedPath),
			logger.Int("games", n),
		)
	}

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithRecentGames(cfg.RecentGames),
		app.WithForfeitGoals(cfg.ForfeitGoals),
		app.WithMaxBatchGames(cfg.MaxBatchGames),
		app.WithRater(newRater(cfg)),
	}
	if sc != nil {
		opts = append(opts, app.WithCache(sc))
	}
	return app.New(store, opts...), nil
}

// newStore opens SQLite when a database path is configured and falls back
// to an in-memory store.
func newStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.ReadWriter, error) {
	if cfg.DatabasePath == "" {
		return repository.NewMemoryStore(), nil
	}
	store, err := repository.OpenSQLite(ctx, cfg.DatabasePath, repository.WithLogger(log.Named("sqlite")))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store, nil
}

func newCache(ctx context.Context, cfg *config.Config) (*cache.ScoreCache, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		b, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL())
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return cache.NewScoreCache(b), nil
	case config.CacheMemory:
		return cache.NewScoreCache(cache.NewMemory(cfg.CacheTTL())), nil
	default:
		return nil, nil
	}
}

func newRater(cfg *config.Config) performance.Rater {
	r := performance.DefaultRater().WithWeights(cfg.RatingWeights)
	r.Base = cfg.RatingBase
	return r
}

// seed imports the dataset at path and drops cached scores for the games it
// touched. It returns the number of games touched.
func seed(ctx context.Context, w repository.Writer, sc *cache.ScoreCache, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := repository.DecodeDataset(f)
	if err != nil {
		return 0, err
	}
	if err := repository.Import(ctx, w, ds); err != nil {
		return 0, err
	}
	ids := ds.GameIDs()
	if sc != nil {
		for _, id := range ids {
			if err := sc.Invalidate(ctx, id); err != nil {
				return 0, fmt.Errorf("invalidate cached score %s: %w", id, err)
			}
		}
	}
	return len(ids), nil
}
