package guard

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/logger"
)

// Resolver is the part of entitlement.Service the guard depends on.
type Resolver interface {
	ResolveSubscription(ctx context.Context, userID uuid.UUID) (entitlement.Subscription, error)
	RemainingQuota(ctx context.Context, userID uuid.UUID, day time.Time) (entitlement.Quota, error)
}

// Guard evaluates access requirements against a user's current entitlements.
type Guard struct {
	resolver Resolver
	now      func() time.Time
	log      *slog.Logger
	metrics  *Metrics
	denied   DeniedHandler
}

// Option configures a Guard.
type Option func(*Guard)

func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// WithMetrics records every decision in m.
func WithMetrics(m *Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// WithDeniedHandler replaces the response written by Middleware on denial.
func WithDeniedHandler(h DeniedHandler) Option {
	return func(g *Guard) {
		if h != nil {
			g.denied = h
		}
	}
}

// New creates a Guard. Panics if resolver is nil.
func New(resolver Resolver, opts ...Option) *Guard {
	if resolver == nil {
		panic("guard: Resolver is required")
	}

	g := &Guard{
		resolver: resolver,
		now:      time.Now,
		log:      logger.Discard(),
		denied:   WriteDenied,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("guard"))

	return g
}

// Check evaluates reqs for the user. All requirements must hold.
// Requirements are checked in a fixed order (admin, plan, feature, quota)
// regardless of argument order, and the first failure wins.
// Any collaborator failure denies with ReasonUnavailableFailClosed.
func (g *Guard) Check(ctx context.Context, userID uuid.UUID, reqs ...Requirement) Decision {
	d := g.check(ctx, userID, reqs)
	g.record(ctx, userID, d)
	return d
}

func (g *Guard) check(ctx context.Context, userID uuid.UUID, reqs []Requirement) Decision {
	if userID == uuid.Nil {
		return deny(ReasonUnauthenticated, Requirement{}, entitlement.Subscription{})
	}

	sub, err := g.resolver.ResolveSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, entitlement.ErrUnauthenticated) {
			return deny(ReasonUnauthenticated, Requirement{}, entitlement.Subscription{})
		}
		return failClosed(err, Requirement{})
	}

	ordered := slices.Clone(reqs)
	slices.SortStableFunc(ordered, func(a, b Requirement) int {
		return cmp.Compare(a.kind, b.kind)
	})

	features := sub.Features()
	var quota *entitlement.Quota

	for _, req := range ordered {
		switch req.kind {
		case kindAdmin:
			if !sub.IsAdmin {
				return deny(ReasonNoAdmin, req, sub)
			}
		case kindPlan:
			if !sub.IsAdmin && !sub.EffectiveTier().AtLeast(req.tier) {
				return deny(ReasonPlanTooLow, req, sub)
			}
		case kindFeature:
			if !sub.IsAdmin && !features.Has(req.capability) {
				return deny(ReasonFeatureUnavailable, req, sub)
			}
		case kindQuota:
			if sub.IsAdmin {
				continue
			}
			q, err := g.resolver.RemainingQuota(ctx, userID, g.now())
			if err != nil {
				return failClosed(err, req)
			}
			if q.Exhausted() {
				d := deny(ReasonQuotaExceeded, req, sub)
				d.Quota = &q
				return d
			}
			quota = &q
		default:
			// Zero or unknown requirements never grant access.
			return failClosed(errors.New("guard: unknown requirement "+req.String()), req)
		}
	}

	return allow(sub, quota)
}

func (g *Guard) record(ctx context.Context, userID uuid.UUID, d Decision) {
	if g.metrics != nil {
		g.metrics.observe(d)
	}

	switch {
	case d.Allowed:
		g.log.DebugContext(ctx, "access granted", logger.UserID(userID))
	case d.Reason == ReasonUnavailableFailClosed:
		g.log.WarnContext(ctx, "access denied, entitlements unavailable",
			logger.UserID(userID), logger.Reason(string(d.Reason)), logger.Error(d.Err))
	default:
		g.log.InfoContext(ctx, "access denied",
			logger.UserID(userID), logger.Reason(string(d.Reason)), slog.String("requirement", d.Unmet.String()))
	}
}
