package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/shortly/internal/adapter/repository/postgres"
	"github.com/vadimbarashkov/shortly/internal/config"
	"github.com/vadimbarashkov/shortly/internal/usecase"
	"github.com/vadimbarashkov/shortly/migrations"
	"github.com/vadimbarashkov/shortly/pkg/logger"
	"github.com/vadimbarashkov/shortly/pkg/metrics"
	"github.com/vadimbarashkov/shortly/pkg/ratelimit"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/shortly/internal/adapter/delivery/http"
	pgpkg "github.com/vadimbarashkov/shortly/pkg/postgres"
)

const serviceName = "shortly"

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	log, logCloser, err := logger.New(serviceName, logger.Options{
		Level:       cfg.Logger.Level,
		JSON:        cfg.Logger.JSON,
		Concise:     cfg.Logger.Concise,
		File:        cfg.Logger.File,
		MaxSizeMB:   cfg.Logger.MaxSizeMB,
		MaxBackups:  cfg.Logger.MaxBackups,
		MaxAgeDays:  cfg.Logger.MaxAgeDays,
		HideHeaders: []string{delivery.AdminKeyHeader},
	})
	if err != nil {
		return fmt.Errorf("%s: failed to create logger: %w", op, err)
	}
	defer logCloser.Close()

	db, err := pgpkg.New(
		ctx,
		cfg.Postgres.DSN(),
		pgpkg.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		pgpkg.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pgpkg.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		pgpkg.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		pgpkg.WithConnectRetry(cfg.Postgres.ConnectAttempts, 0),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := pgpkg.RunMigrations(migrations.FS, cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	log.Info("database is ready", slog.String("host", cfg.Postgres.Host), slog.String("db", cfg.Postgres.DB))

	limiter, closeLimiter, err := newLimiter(ctx, cfg.RateLimit, cfg.Redis)
	if err != nil {
		return fmt.Errorf("%s: failed to create rate limiter: %w", op, err)
	}
	defer closeLimiter()

	urlRepo := postgres.NewURLRepository(db, postgres.WithQueryTimeout(cfg.Postgres.QueryTimeout))
	urlUseCase := usecase.NewURLUseCase(cfg.ShortCodeLength, urlRepo)
	adminUseCase := usecase.NewAdminUseCase(urlRepo)

	r := delivery.NewRouter(log, delivery.RouterConfig{
		BaseURL:           cfg.BaseURL,
		AdminSecret:       cfg.AdminSecret,
		AllowedOrigins:    cfg.AllowedOrigins,
		BlockedHosts:      cfg.BlockedHosts,
		TrustProxyHeaders: cfg.HTTPServer.TrustProxyHeaders,
		Limiter:           limiter,
		Metrics:           metrics.New(),
	}, urlUseCase, adminUseCase)

	if cfg.AdminSecret == "" {
		log.Warn("admin secret is not set, admin api is disabled")
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// newLimiter builds the configured rate limiter. The returned func releases its resources.
func newLimiter(ctx context.Context, rl config.RateLimit, rc config.Redis) (ratelimit.Limiter, func(), error) {
	const op = "app.newLimiter"

	if !rl.Enabled {
		return nil, func() {}, nil
	}

	if rl.Backend != config.RateLimitRedis {
		return ratelimit.NewMemoryLimiter(rl.Requests, rl.Window), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}

	return ratelimit.NewRedisLimiter(client, rl.Requests, rl.Window), func() { client.Close() }, nil
}
