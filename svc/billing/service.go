package billing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/logger"
)

// maxWebhookBody bounds webhook payloads.
const maxWebhookBody = 1 << 20

// Entitlements applies billing driven lifecycle changes.
type Entitlements interface {
	ChangePlan(ctx context.Context, userID uuid.UUID, tier entitlement.Tier, expiresAt *time.Time) (entitlement.Subscription, error)
	Cancel(ctx context.Context, userID uuid.UUID, expiresAt *time.Time) (entitlement.Subscription, error)
	MarkPastDue(ctx context.Context, userID uuid.UUID) (entitlement.Subscription, error)
}

// Service creates checkouts and applies Paddle webhooks.
// Without a Paddle client it only hands out the catalog upgrade URL.
type Service struct {
	ent    Entitlements
	paddle *Paddle
	cfg    Config
	log    *slog.Logger
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPaddle enables Paddle checkout and webhooks.
func WithPaddle(p *Paddle) ServiceOption {
	return func(s *Service) {
		s.paddle = p
	}
}

// NewService creates a billing service. It panics if ent is nil.
func NewService(ent Entitlements, cfg Config, opts ...ServiceOption) *Service {
	if ent == nil {
		panic("billing: entitlements cannot be nil")
	}
	s := &Service{
		ent: ent,
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("billing"))
	return s
}

// Enabled reports whether webhooks can be processed.
func (s *Service) Enabled() bool {
	return s.paddle != nil
}

// Checkout returns where the user should go to buy tier.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, email string, tier entitlement.Tier) (CheckoutLink, error) {
	if !tier.AtLeast(entitlement.TierPro) {
		return CheckoutLink{}, fmt.Errorf("%w: %s", ErrNotPaidTier, tier)
	}
	if s.paddle == nil {
		return CheckoutLink{URL: entitlement.UpgradeURL(tier)}, nil
	}
	priceID, ok := s.cfg.PriceFor(tier)
	if !ok {
		return CheckoutLink{}, fmt.Errorf("%w: %s", ErrUnknownPrice, tier)
	}
	return s.paddle.Checkout(ctx, userID, email, priceID, s.cfg.SuccessURL)
}

// HandleWebhook verifies and applies a Paddle webhook request.
func (s *Service) HandleWebhook(r *http.Request) (Event, error) {
	if s.paddle == nil {
		return Event{}, ErrWebhookSecretRequired
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return Event{}, errors.Join(ErrInvalidPayload, err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err := s.paddle.Verify(r); err != nil {
		return Event{}, err
	}

	ev, err := ParseEvent(body)
	if err != nil {
		return Event{}, err
	}
	return ev, s.Apply(r.Context(), ev)
}

// Apply performs the lifecycle change an event asks for.
// Transitions that are no longer valid, such as a late past_due after a
// cancellation, are logged and skipped.
func (s *Service) Apply(ctx context.Context, ev Event) error {
	log := s.log.With(logger.EventType(ev.Type), slog.String("event_id", ev.ID))
	if ev.Action == ActionNone {
		log.DebugContext(ctx, "ignoring billing event")
		return nil
	}
	if ev.UserID == uuid.Nil {
		return ErrMissingUser
	}

	var err error
	switch ev.Action {
	case ActionActivate:
		tier, ok := s.cfg.TierFor(ev.PriceID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPrice, ev.PriceID)
		}
		_, err = s.ent.ChangePlan(ctx, ev.UserID, tier, ev.PeriodEnd)
	case ActionCancel:
		_, err = s.ent.Cancel(ctx, ev.UserID, ev.PeriodEnd)
	case ActionPastDue:
		_, err = s.ent.MarkPastDue(ctx, ev.UserID)
	}

	if errors.Is(err, entitlement.ErrInvalidTransition) {
		log.InfoContext(ctx, "skipping billing event", logger.UserID(ev.UserID), logger.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "billing event applied", logger.UserID(ev.UserID), slog.String("action", string(ev.Action)))
	return nil
}
