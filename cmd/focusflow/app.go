package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/focusflow/pkg/config"
	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/httpserver"
	"github.com/dmitrymomot/focusflow/pkg/logger"
	"github.com/dmitrymomot/focusflow/pkg/pg"
	"github.com/dmitrymomot/focusflow/pkg/redis"
	"github.com/dmitrymomot/focusflow/svc/store"
	"github.com/dmitrymomot/focusflow/svc/usage"
)

var errUnknownDriver = errors.New("unknown driver")

// app holds the wired entitlement core shared by every command.
type app struct {
	cfg     appConfig
	log     *slog.Logger
	loc     *time.Location
	store   entitlement.Store
	svc     entitlement.Service
	checks  []httpserver.Check
	closers []func()
}

func newLogger(cfg appConfig) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	return logger.New(opts...)
}

func newApp(ctx context.Context, cfg appConfig, log *slog.Logger) (*app, error) {
	loc, err := time.LoadLocation(cfg.QuotaTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTA_TIMEZONE %q: %w", cfg.QuotaTimezone, err)
	}
	a := &app{cfg: cfg, log: log, loc: loc}

	var counter entitlement.UsageCounter
	switch strings.ToLower(cfg.StoreDriver) {
	case "memory":
		m := entitlement.NewMemoryStore()
		a.store, counter = m, m
		log.WarnContext(ctx, "using in-memory store, data is lost on exit")
	case "postgres":
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if cfg.AutoMigrate {
			if err := store.Migrate(ctx, pool, pgCfg, log); err != nil {
				a.Close()
				return nil, err
			}
		}
		s := store.New(pool, store.WithQueryTimeout(pgCfg.QueryTimeout))
		a.store, counter = s, s
		a.checks = append(a.checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
	default:
		return nil, fmt.Errorf("%w: STORE_DRIVER=%q", errUnknownDriver, cfg.StoreDriver)
	}

	switch strings.ToLower(cfg.UsageDriver) {
	case "", "store":
	case "redis":
		var rCfg redis.Config
		if err := config.Load(&rCfg); err != nil {
			a.Close()
			return nil, err
		}
		var uCfg usage.Config
		if err := config.Load(&uCfg); err != nil {
			a.Close()
			return nil, err
		}
		client, err := redis.Connect(ctx, rCfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		counter = usage.New(client, uCfg)
		a.checks = append(a.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	default:
		a.Close()
		return nil, fmt.Errorf("%w: USAGE_DRIVER=%q", errUnknownDriver, cfg.UsageDriver)
	}

	a.svc = entitlement.NewService(a.store, counter,
		entitlement.WithLogger(log),
		entitlement.WithRootAdmin(cfg.RootAdminEmail),
		entitlement.WithLocation(loc),
		entitlement.WithDefaultTrialDays(cfg.TrialDays),
	)
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// lookupUser resolves a user id or email address.
func (a *app) lookupUser(ctx context.Context, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	if !strings.Contains(ref, "@") {
		return uuid.Nil, fmt.Errorf("%q is neither a user id nor an email", ref)
	}
	id, err := a.store.FindUserByEmail(ctx, ref)
	if errors.Is(err, entitlement.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("%w: %s", entitlement.ErrNotFound, ref)
	}
	return id, err
}

// operator returns the root administrator, on whose behalf admin commands act.
func (a *app) operator(ctx context.Context) (uuid.UUID, error) {
	if a.cfg.RootAdminEmail == "" {
		return uuid.Nil, errors.New("ROOT_ADMIN_EMAIL is not set")
	}
	return a.lookupUser(ctx, a.cfg.RootAdminEmail)
}
