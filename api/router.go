package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/focusflow/handler"
	"github.com/dmitrymomot/focusflow/pkg/binder"
	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/guard"
	"github.com/dmitrymomot/focusflow/pkg/httpserver"
	"github.com/dmitrymomot/focusflow/pkg/jwt"
	"github.com/dmitrymomot/focusflow/svc/billing"
	"github.com/dmitrymomot/focusflow/svc/calendar"
	"github.com/dmitrymomot/focusflow/svc/coach"
)

// Deps are the collaborators of the HTTP API. Coach and Calendar may be nil
// when not configured; their routes then answer 503.
type Deps struct {
	Entitlements entitlement.Service
	Guard        *guard.Guard
	Tokens       *jwt.Parser
	Billing      *billing.Service
	Coach        *coach.Service
	Calendar     *calendar.Service

	Gatherer  prometheus.Gatherer
	Readiness []httpserver.Check
	Logger    *slog.Logger
	Now       func() time.Time
}

type server struct {
	Deps
	log  *slog.Logger
	errs handler.ErrorHandler
}

// wrap adapts a typed handler with the API's binders and error mapping.
func wrap[R any](s *server, h handler.HandlerFunc[R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h, handler.WithBinders(binders...), handler.WithErrorHandler(s.errs))
}

// NewRouter builds the FocusFlow HTTP API.
// It panics if Entitlements, Guard, Tokens or Billing is nil.
func NewRouter(d Deps) http.Handler {
	switch {
	case d.Entitlements == nil:
		panic("api: entitlements service cannot be nil")
	case d.Guard == nil:
		panic("api: guard cannot be nil")
	case d.Tokens == nil:
		panic("api: token parser cannot be nil")
	case d.Billing == nil:
		panic("api: billing service cannot be nil")
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	s := &server{
		Deps: d,
		log:  d.Logger,
		errs: handler.NewErrorHandler(d.Logger, handler.ErrorHandlerConfig{
			Mappings:   errorMappings,
			RetryAfter: 5 * time.Second,
		}),
	}
	jsonBody := binder.JSON()

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		requestLogger(s.log),
		middleware.Recoverer,
	)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(s.log, 3*time.Second, d.Readiness...))
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/plans", wrap(s, s.listPlans))

		// Webhooks authenticate by signature, not by user token.
		r.Post("/billing/webhook", wrap(s, s.billingWebhook))

		r.Group(func(r chi.Router) {
			r.Use(jwt.Middleware(d.Tokens, s.log))

			r.Route("/me", func(r chi.Router) {
				r.Post("/register", wrap(s, s.register))
				r.Get("/subscription", wrap(s, s.mySubscription))
				r.Post("/trial", wrap(s, s.startTrial, binder.OptionalJSON()))
				r.Post("/upgrade", wrap(s, s.upgrade, jsonBody))
			})

			r.With(d.Guard.Middleware(guard.RequireSessionQuota())).
				Post("/focus-sessions", wrap(s, s.recordFocusSession))

			r.Route("/coach", func(r chi.Router) {
				r.Use(d.Guard.Middleware(guard.RequireFeature(entitlement.CapabilityAICoaching)))
				r.Post("/chat", wrap(s, s.coachChat, jsonBody))
				r.Post("/insights", wrap(s, s.coachInsights, jsonBody))
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Use(d.Guard.Middleware(guard.RequireFeature(entitlement.CapabilityCalendarIntegration)))
				r.Get("/auth-url", wrap(s, s.calendarAuthURL))
				r.Post("/token", wrap(s, s.calendarToken, jsonBody))
				r.Get("/events", wrap(s, s.calendarEvents, binder.Query()))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(d.Guard.Middleware(guard.RequireAdmin()))
				r.Get("/users", wrap(s, s.listUsers))
				r.Post("/admins", wrap(s, s.promoteAdmin, jsonBody))
				r.Delete("/admins/{userID}", wrap(s, s.demoteAdmin, binder.Path(chi.URLParam)))
			})
		})
	})

	return r
}
