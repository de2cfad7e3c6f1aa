package entitlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/focusflow/pkg/logger"
)

// DefaultTrialDays is the trial length granted by StartDefaultTrial.
const DefaultTrialDays = 14

// Service answers entitlement questions and applies subscription changes.
type Service interface {
	// Resolution and gating
	ResolveSubscription(ctx context.Context, userID uuid.UUID) (Subscription, error)
	HasCapability(ctx context.Context, userID uuid.UUID, c Capability) (bool, error)
	RemainingQuota(ctx context.Context, userID uuid.UUID, day time.Time) (Quota, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	IsTrialExpired(ctx context.Context, userID uuid.UUID) (bool, error)

	// Usage
	RecordFocusSession(ctx context.Context, userID uuid.UUID) (Quota, error)

	// Lifecycle
	Register(ctx context.Context, userID uuid.UUID, email string) (Subscription, error)
	StartTrial(ctx context.Context, userID uuid.UUID, days int) (Subscription, error)
	StartDefaultTrial(ctx context.Context, userID uuid.UUID) (Subscription, error)
	ChangePlan(ctx context.Context, userID uuid.UUID, tier Tier, expiresAt *time.Time) (Subscription, error)
	Cancel(ctx context.Context, userID uuid.UUID, expiresAt *time.Time) (Subscription, error)
	MarkPastDue(ctx context.Context, userID uuid.UUID) (Subscription, error)

	// Administration
	PromoteToAdmin(ctx context.Context, granterID uuid.UUID, email string) error
	DemoteAdmin(ctx context.Context, granterID, targetID uuid.UUID) error
	ListSubscriptions(ctx context.Context, granterID uuid.UUID) ([]Subscription, error)
	BootstrapRootAdmin(ctx context.Context) error
}

type service struct {
	store            Store
	usage            UsageCounter
	now              func() time.Time
	loc              *time.Location
	rootAdminEmail   string
	defaultTrialDays int
	log              *slog.Logger
}

// NewService creates a new entitlement Service.
// Panics if store or usage is nil to fail fast during initialization.
func NewService(store Store, usage UsageCounter, opts ...ServiceOption) Service {
	if store == nil {
		panic("entitlement: Store is required")
	}
	if usage == nil {
		panic("entitlement: UsageCounter is required")
	}

	s := &service{
		store:            store,
		usage:            usage,
		now:              time.Now,
		loc:              time.UTC,
		defaultTrialDays: DefaultTrialDays,
		log:              slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.With(logger.Component("entitlement"))

	return s
}

// ResolveSubscription loads the user's subscription state.
// Users without a record resolve to free/active.
func (s *service) ResolveSubscription(ctx context.Context, userID uuid.UUID) (Subscription, error) {
	if userID == uuid.Nil {
		return Subscription{}, ErrUnauthenticated
	}
	if err := ctx.Err(); err != nil {
		return Subscription{}, err
	}

	now := s.now()
	rec, err := s.store.GetSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return Subscription{
				UserID:     userID,
				Tier:       TierFree,
				Status:     StatusActive,
				ResolvedAt: now,
			}, nil
		}
		s.log.WarnContext(ctx, "failed to load subscription", logger.UserID(userID), logger.Error(err))
		return Subscription{}, errors.Join(ErrStoreUnavailable, err)
	}

	return fromRecord(rec, now), nil
}

// HasCapability reports whether the user's effective plan grants the capability.
// Admins hold every capability.
func (s *service) HasCapability(ctx context.Context, userID uuid.UUID, c Capability) (bool, error) {
	sub, err := s.ResolveSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	if sub.IsAdmin {
		return true, nil
	}
	return sub.Features().Has(c), nil
}

// RemainingQuota returns the focus-session allowance for the calendar day containing day.
func (s *service) RemainingQuota(ctx context.Context, userID uuid.UUID, day time.Time) (Quota, error) {
	sub, err := s.ResolveSubscription(ctx, userID)
	if err != nil {
		return Quota{}, err
	}
	return s.quotaFor(ctx, sub, day)
}

func (s *service) quotaFor(ctx context.Context, sub Subscription, day time.Time) (Quota, error) {
	limit := sub.Features().MaxFocusSessionsPerDay
	if sub.IsAdmin || limit == Unlimited {
		return Quota{Limit: Unlimited, Remaining: Unlimited}, nil
	}

	start, end := s.dayBounds(day)
	used, err := s.usage.CountUnitsForDay(ctx, sub.UserID, UnitFocusSession, start, end)
	if err != nil {
		s.log.WarnContext(ctx, "failed to count focus sessions", logger.UserID(sub.UserID), logger.Error(err))
		return Quota{}, errors.Join(ErrStoreUnavailable, err)
	}

	return Quota{Limit: limit, Used: used, Remaining: max(limit-used, 0)}, nil
}

func (s *service) dayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.In(s.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *service) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.ResolveSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	return sub.IsAdmin, nil
}

func (s *service) IsTrialExpired(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.ResolveSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	return sub.IsTrialExpired(), nil
}

// RecordFocusSession counts a completed focus block against today's quota.
// Returns ErrQuotaExceeded without recording when nothing remains. With a
// LimitedUsageCounter the limit check and the write are one atomic step;
// a plain UsageCounter checks then records, so parallel requests can each pass
// the check and overrun the limit by the number of racing requests.
func (s *service) RecordFocusSession(ctx context.Context, userID uuid.UUID) (Quota, error) {
	sub, err := s.ResolveSubscription(ctx, userID)
	if err != nil {
		return Quota{}, err
	}

	now := s.now()
	limit := sub.Features().MaxFocusSessionsPerDay
	if limited, ok := s.usage.(LimitedUsageCounter); ok && !sub.IsAdmin && limit != Unlimited {
		start, end := s.dayBounds(now)
		used, recorded, err := limited.RecordUnitWithin(ctx, userID, UnitFocusSession, now, start, end, limit)
		if err != nil {
			s.log.WarnContext(ctx, "failed to record focus session", logger.UserID(userID), logger.Error(err))
			return Quota{}, errors.Join(ErrStoreUnavailable, err)
		}
		q := Quota{Limit: limit, Used: used, Remaining: max(limit-used, 0)}
		if !recorded {
			return q, ErrQuotaExceeded
		}
		return q, nil
	}

	q, err := s.quotaFor(ctx, sub, now)
	if err != nil {
		return Quota{}, err
	}
	if q.Exhausted() {
		return q, ErrQuotaExceeded
	}

	if err := s.usage.RecordUnit(ctx, userID, UnitFocusSession, now); err != nil {
		return Quota{}, errors.Join(ErrStoreUnavailable, err)
	}

	if !q.Unlimited() {
		q.Used++
		q.Remaining--
	}
	return q, nil
}

// Register creates the free/active record of a new user. Registering an existing
// user keeps their plan but records the email if the row had none.
func (s *service) Register(ctx context.Context, userID uuid.UUID, email string) (Subscription, error) {
	if userID == uuid.Nil {
		return Subscription{}, ErrUnauthenticated
	}

	email = normalizeEmail(email)
	now := s.now()
	rec := Record{
		UserID:    userID,
		Email:     email,
		PlanType:  TierFree.String(),
		Status:    string(StatusActive),
		IsAdmin:   s.isRootEmail(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSubscription(ctx, rec); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Subscription{}, err
		}
		return Subscription{}, errors.Join(ErrStoreUnavailable, err)
	}

	s.log.InfoContext(ctx, "user registered", logger.UserID(userID))
	return s.ResolveSubscription(ctx, userID)
}

// StartTrial puts the user on a pro trial ending days from now.
// Calling it again restarts the window.
func (s *service) StartTrial(ctx context.Context, userID uuid.UUID, days int) (Subscription, error) {
	if days <= 0 {
		return Subscription{}, ErrInvalidTrialDuration
	}

	ends := s.now().Add(time.Duration(days) * 24 * time.Hour)
	tier := TierPro
	sub, err := s.transition(ctx, userID, EventStartTrial, Patch{Tier: &tier, TrialEndsAt: &ends})
	if err != nil {
		return Subscription{}, err
	}

	s.log.InfoContext(ctx, "trial started", logger.UserID(userID), slog.Int("days", days))
	return sub, nil
}

func (s *service) StartDefaultTrial(ctx context.Context, userID uuid.UUID) (Subscription, error) {
	return s.StartTrial(ctx, userID, s.defaultTrialDays)
}

// ChangePlan activates the given tier. A nil expiresAt clears any previous expiry.
func (s *service) ChangePlan(ctx context.Context, userID uuid.UUID, tier Tier, expiresAt *time.Time) (Subscription, error) {
	if !tier.valid() {
		return Subscription{}, ErrInvalidTier
	}

	patch := Patch{Tier: &tier, ExpiresAt: expiresAt, ClearExpiresAt: expiresAt == nil}
	sub, err := s.transition(ctx, userID, EventActivate, patch)
	if err != nil {
		return Subscription{}, err
	}

	s.log.InfoContext(ctx, "plan changed", logger.UserID(userID), logger.Tier(tier.String()))
	return sub, nil
}

// Cancel marks the subscription cancelled. Paid access lasts until expiresAt when given.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID, expiresAt *time.Time) (Subscription, error) {
	sub, err := s.transition(ctx, userID, EventCancel, Patch{ExpiresAt: expiresAt})
	if err != nil {
		return Subscription{}, err
	}

	s.log.InfoContext(ctx, "subscription cancelled", logger.UserID(userID))
	return sub, nil
}

func (s *service) MarkPastDue(ctx context.Context, userID uuid.UUID) (Subscription, error) {
	sub, err := s.transition(ctx, userID, EventPaymentFailed, Patch{})
	if err != nil {
		return Subscription{}, err
	}

	s.log.WarnContext(ctx, "subscription past due", logger.UserID(userID))
	return sub, nil
}

// transition validates the status change and writes it together with patch.
func (s *service) transition(ctx context.Context, userID uuid.UUID, event Event, patch Patch) (Subscription, error) {
	current, err := s.ResolveSubscription(ctx, userID)
	if err != nil {
		return Subscription{}, err
	}

	next, err := NextStatus(current.Status, event)
	if err != nil {
		return Subscription{}, err
	}
	patch.Status = &next

	if err := s.store.UpdateSubscription(ctx, userID, patch); err != nil {
		return Subscription{}, errors.Join(ErrStoreUnavailable, err)
	}

	return s.ResolveSubscription(ctx, userID)
}

// PromoteToAdmin grants the admin flag to the user registered with email.
func (s *service) PromoteToAdmin(ctx context.Context, granterID uuid.UUID, email string) error {
	if err := s.requireAdmin(ctx, granterID); err != nil {
		return err
	}

	targetID, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.setAdmin(ctx, targetID, true); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "admin granted", logger.UserID(targetID), slog.String("granted_by", granterID.String()))
	return nil
}

// DemoteAdmin revokes the admin flag. The root admin is protected regardless of who asks.
func (s *service) DemoteAdmin(ctx context.Context, granterID, targetID uuid.UUID) error {
	protected, err := s.isRootAdmin(ctx, targetID)
	if err != nil {
		return err
	}
	if protected {
		s.log.WarnContext(ctx, "refused to demote root admin", slog.String("requested_by", granterID.String()))
		return ErrProtectedAdmin
	}

	if err := s.requireAdmin(ctx, granterID); err != nil {
		return err
	}

	if _, err := s.store.GetSubscription(ctx, targetID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrNotFound
		}
		return errors.Join(ErrStoreUnavailable, err)
	}

	if err := s.setAdmin(ctx, targetID, false); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "admin revoked", logger.UserID(targetID), slog.String("revoked_by", granterID.String()))
	return nil
}

// ListSubscriptions returns every stored subscription. Admin only.
func (s *service) ListSubscriptions(ctx context.Context, granterID uuid.UUID) ([]Subscription, error) {
	if err := s.requireAdmin(ctx, granterID); err != nil {
		return nil, err
	}

	recs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	now := s.now()
	subs := make([]Subscription, 0, len(recs))
	for i := range recs {
		subs = append(subs, fromRecord(&recs[i], now))
	}
	return subs, nil
}

// BootstrapRootAdmin grants admin to the configured root identity.
// Returns ErrNotFound when that user has not registered yet.
func (s *service) BootstrapRootAdmin(ctx context.Context) error {
	if s.rootAdminEmail == "" {
		s.log.InfoContext(ctx, "no root admin configured")
		return nil
	}

	id, err := s.findByEmail(ctx, s.rootAdminEmail)
	if err != nil {
		return err
	}

	if err := s.setAdmin(ctx, id, true); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "root admin bootstrapped", logger.UserID(id))
	return nil
}

func (s *service) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.ResolveSubscription(ctx, userID)
	if err != nil {
		return err
	}
	if !sub.IsAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *service) setAdmin(ctx context.Context, userID uuid.UUID, admin bool) error {
	if err := s.store.UpdateSubscription(ctx, userID, Patch{IsAdmin: &admin}); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *service) findByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	id, err := s.store.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, errors.Join(ErrStoreUnavailable, err)
	}
	return id, nil
}

func (s *service) isRootEmail(email string) bool {
	return s.rootAdminEmail != "" && normalizeEmail(email) == s.rootAdminEmail
}

func (s *service) isRootAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.rootAdminEmail == "" {
		return false, nil
	}
	rootID, err := s.findByEmail(ctx, s.rootAdminEmail)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rootID == userID, nil
}

func fromRecord(rec *Record, now time.Time) Subscription {
	return Subscription{
		UserID:      rec.UserID,
		Email:       rec.Email,
		Tier:        TierFromPlanType(rec.PlanType),
		Status:      ParseStatus(rec.Status),
		IsAdmin:     rec.IsAdmin,
		TrialEndsAt: rec.TrialEndsAt,
		ExpiresAt:   rec.ExpiresAt,
		ResolvedAt:  now,
	}
}
