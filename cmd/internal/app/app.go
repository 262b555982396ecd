package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"authgate/cmd/identity"
	authapi "authgate/cmd/internal/auth/api"
	"authgate/cmd/internal/auth/flows"
	"authgate/cmd/internal/auth/ratelimit"
	"authgate/cmd/internal/auth/session"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App owns the wired service graph and the HTTP server lifecycle.
type App struct {
	cfg Config
	log *slog.Logger

	pool      *pgxpool.Pool
	dbEnabled bool

	cache *session.TokenCache
	auth  *authapi.Handler
}

// New wires the full service graph from configuration. Without a
// database URL everything runs on in-memory stores, which is the
// local-development mode; Postgres is the production path.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	apiCfg, err := authapi.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	var (
		pool      *pgxpool.Pool
		dbEnabled bool

		records session.RecordStore
		singles session.RecordStore
		users   identity.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err = NewDBPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		dbEnabled = true

		records = session.NewPostgresRecordStore(pool, sessCfg)
		singles = session.NewPostgresRecordStore(pool, sessCfg)
		users, err = identity.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("app.store.postgres", "max_conns", cfg.DBMaxConns)
	} else {
		records = session.NewMemoryRecordStore()
		singles = session.NewMemoryRecordStore()
		users = identity.NewMemoryStore()
		log.Warn("app.store.memory", "reason", "AUTHGATE_DATABASE_URL not set")
	}

	cache, err := session.NewTokenCache(sessCfg.CacheTTL, sessCfg.CacheMaxEntries)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	limiter := ratelimit.New(sessCfg.RateLimitPoints, sessCfg.RateLimitWindow)

	directory, err := identity.NewDirectory(users, log)
	if err != nil {
		return nil, errors.Join(err, closeAll(cache, pool))
	}
	sessions, err := session.NewService(sessCfg, log, records, cache, limiter, directory)
	if err != nil {
		return nil, errors.Join(err, closeAll(cache, pool))
	}
	linkFlows, err := flows.NewService(log, sessions, singles, directory, flows.NoopNotifier{})
	if err != nil {
		return nil, errors.Join(err, closeAll(cache, pool))
	}

	auth, err := authapi.NewHandler(log, apiCfg, sessions, linkFlows, pool)
	if err != nil {
		return nil, errors.Join(err, closeAll(cache, pool))
	}

	return &App{
		cfg:       cfg,
		log:       log,
		pool:      pool,
		dbEnabled: dbEnabled,
		cache:     cache,
		auth:      auth,
	}, nil
}

func closeAll(cache *session.TokenCache, pool *pgxpool.Pool) error {
	if cache != nil {
		cache.Close()
	}
	if pool != nil {
		pool.Close()
	}
	return nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.pool, a.dbEnabled, a.auth)

	var handler http.Handler = mux
	handler = WithSecurityHeaders(handler)
	handler = WithCORS(handler, a.cfg, a.log)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.ReadTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http.listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("http.shutdown.begin")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http.shutdown.forced", "err", err)
		_ = srv.Close()
		return err
	}
	a.log.Info("http.shutdown.done")
	return <-errCh
}

func (a *App) close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
