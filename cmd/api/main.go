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

	"github.com/getlocalbuddy/backend/internal/auth"
	"github.com/getlocalbuddy/backend/internal/cache"
	"github.com/getlocalbuddy/backend/internal/config"
	"github.com/getlocalbuddy/backend/internal/db"
	httpx "github.com/getlocalbuddy/backend/internal/http"
	"github.com/getlocalbuddy/backend/internal/observability"
	"github.com/getlocalbuddy/backend/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// run returns only after its deferred cleanup, so the exit code is set last
	if err := run(cfg, log); err != nil {
		log.Error("api stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		tctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(tctx)
	}()

	// one pool for the whole process
	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	usersRepo := postgres.NewUsersRepo(pool, prom)
	postsRepo := postgres.NewPostsRepo(pool, prom, cfg.AvatarTemplate)

	seedCtx, cancelSeed := context.WithTimeout(ctx, 5*time.Second)
	created, err := db.EnsureAdminUser(seedCtx, usersRepo, cfg)
	cancelSeed()
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	listCache, closeCache := buildCache(ctx, cfg)
	defer closeCache()

	tokens := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, httpx.Dependencies{
		Users:   usersRepo,
		Posts:   postsRepo,
		Ready:   usersRepo,
		Cache:   listCache,
		Prom:    prom,
		Tokens:  tokens,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return serve(ctx, srv, log)
}

// serve blocks until ctx ends or the listener fails. A listener failure is
// returned so the process exits non-zero.
func serve(ctx context.Context, srv *http.Server, log *slog.Logger) error {
	serverErr := make(chan error, 1)

	go func() {
		log.Info("Server starting", "addr", srv.Addr)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown

	select {
	case <-ctx.Done():
		log.Info("server shutting down")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

// buildCache prefers redis so every instance shares the listing cache,
// falling back to process memory when redis is absent or unreachable.
func buildCache(ctx context.Context, cfg config.Config) (cache.Store, func()) {
	if cfg.RedisAddr == "" {
		return cache.New(cfg.PostsCacheTTL), func() {}
	}

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	rc, err := cache.DialRedis(pctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.PostsCacheTTL)

	if err != nil {
		slog.Warn("redis unavailable, using in-memory cache", "addr", cfg.RedisAddr, "err", err)
		return cache.New(cfg.PostsCacheTTL), func() {}
	}

	return rc, func() { _ = rc.Close() }
}
