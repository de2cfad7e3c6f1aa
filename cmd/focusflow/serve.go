package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/focusflow/api"
	"github.com/dmitrymomot/focusflow/pkg/config"
	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/guard"
	"github.com/dmitrymomot/focusflow/pkg/httpserver"
	"github.com/dmitrymomot/focusflow/pkg/jwt"
	"github.com/dmitrymomot/focusflow/pkg/logger"
	"github.com/dmitrymomot/focusflow/svc/billing"
	"github.com/dmitrymomot/focusflow/svc/calendar"
	"github.com/dmitrymomot/focusflow/svc/coach"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.withApp(ctx, c.serve)
		},
	}
}

func (c *cli) serve(ctx context.Context, a *app) error {
	log := c.log

	var (
		httpCfg     httpserver.Config
		jwtCfg      jwt.Config
		billingCfg  billing.Config
		coachCfg    coach.Config
		calendarCfg calendar.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&jwtCfg) },
		func() error { return config.Load(&billingCfg) },
		func() error { return config.Load(&coachCfg) },
		func() error { return config.Load(&calendarCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	tokens, err := jwt.NewParser(jwtCfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	g := guard.New(a.svc, guard.WithLogger(log), guard.WithMetrics(guard.NewMetrics(reg)))

	billingOpts := []billing.ServiceOption{billing.WithLogger(log)}
	if billingCfg.Enabled() {
		p, err := billing.NewPaddle(billingCfg)
		if err != nil {
			return err
		}
		billingOpts = append(billingOpts, billing.WithPaddle(p))
	} else {
		log.InfoContext(ctx, "paddle is not configured, upgrades link to the in-app checkout")
	}

	var coachSvc *coach.Service
	if coachCfg.APIKey != "" {
		completer, err := coach.NewOpenRouter(coachCfg, nil)
		if err != nil {
			return err
		}
		coachSvc = coach.NewService(a.svc, completer, coach.WithLogger(log), coach.WithMaxHistory(coachCfg.MaxHistory))
	} else {
		log.InfoContext(ctx, "ai coach disabled, OPENROUTER_API_KEY is not set")
	}

	var calendarSvc *calendar.Service
	if calendarCfg.Enabled() {
		calendarSvc = calendar.NewService(a.svc, calendarCfg, calendar.WithLogger(log), calendar.WithLocation(a.loc))
	} else {
		log.InfoContext(ctx, "calendar integration disabled, google oauth credentials are not set")
	}

	if err := a.svc.BootstrapRootAdmin(ctx); err != nil {
		if !errors.Is(err, entitlement.ErrNotFound) {
			return err
		}
		log.InfoContext(ctx, "root admin has not registered yet", slog.String("email", a.cfg.RootAdminEmail))
	}

	handler := api.NewRouter(api.Deps{
		Entitlements: a.svc,
		Guard:        g,
		Tokens:       tokens,
		Billing:      billing.NewService(a.svc, billingCfg, billingOpts...),
		Coach:        coachSvc,
		Calendar:     calendarSvc,
		Gatherer:     reg,
		Readiness:    a.checks,
		Logger:       log,
	})

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log.With(logger.Component("api"))))
		return srv.Run(ctx, handler)
	})
	if a.cfg.MetricsAddr != "" {
		eg.Go(func() error {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
			srv := httpserver.New(httpserver.WithAddr(a.cfg.MetricsAddr), httpserver.WithLogger(log.With(logger.Component("metrics"))))
			return srv.Run(ctx, mux)
		})
	}
	return eg.Wait()
}
