package entitlement

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the billing state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusPastDue   Status = "past_due"
	StatusTrial     Status = "trial"
)

// ParseStatus normalizes a persisted status value.
// Empty means active (fresh rows have no status yet). Billing provider spellings
// are folded in. Anything unrecognized is treated as cancelled so it cannot grant
// paid access.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active":
		return StatusActive
	case "trial", "trialing":
		return StatusTrial
	case "past_due":
		return StatusPastDue
	case "cancelled", "canceled", "expired":
		return StatusCancelled
	}
	return StatusCancelled
}

// Subscription is the resolved entitlement state of one user.
type Subscription struct {
	UserID      uuid.UUID  `json:"user_id"`
	Email       string     `json:"email,omitempty"`
	Tier        Tier       `json:"tier"`
	Status      Status     `json:"status"`
	IsAdmin     bool       `json:"is_admin"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	// ResolvedAt is the service clock reading when the state was loaded.
	// Time-dependent questions are answered relative to it.
	ResolvedAt time.Time `json:"resolved_at"`
}

// IsTrialExpired reports whether the clock has passed the end of a trial.
// At exactly TrialEndsAt the trial is still running.
func (s Subscription) IsTrialExpired() bool {
	return s.Status == StatusTrial && s.TrialEndsAt != nil && s.ResolvedAt.After(*s.TrialEndsAt)
}

// TrialDaysRemainingAt returns whole days left in the trial at the given time.
// Partial days count as a full day; non-trial subscriptions return 0.
func (s Subscription) TrialDaysRemainingAt(now time.Time) int {
	if s.Status != StatusTrial || s.TrialEndsAt == nil {
		return 0
	}
	left := s.TrialEndsAt.Sub(now)
	if left <= 0 {
		return 0
	}
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// EffectiveTier is the tier used for gating.
// Cancelled subscriptions keep their tier until ExpiresAt, expired trials fall back to free.
func (s Subscription) EffectiveTier() Tier {
	switch s.Status {
	case StatusCancelled:
		if s.ExpiresAt != nil && s.ResolvedAt.Before(*s.ExpiresAt) {
			return s.Tier
		}
		return TierFree
	case StatusTrial:
		if s.IsTrialExpired() {
			return TierFree
		}
	}
	return s.Tier
}

// Features returns the feature set of the effective tier.
func (s Subscription) Features() FeatureSet {
	return FeaturesFor(s.EffectiveTier())
}

// Record is the persisted shape of a subscription row.
type Record struct {
	UserID      uuid.UUID
	Email       string
	PlanType    string
	Status      string
	IsAdmin     bool
	TrialEndsAt *time.Time
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Tier        *Tier
	Status      *Status
	IsAdmin     *bool
	TrialEndsAt *time.Time
	ExpiresAt   *time.Time

	// ClearExpiresAt removes a previously set expiry.
	ClearExpiresAt bool
}

// Quota is the daily focus-session allowance at a point in time.
type Quota struct {
	Limit     int64 `json:"limit"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
}

// Unlimited reports whether the quota has no ceiling.
func (q Quota) Unlimited() bool {
	return q.Limit == Unlimited
}

// Exhausted reports whether no units remain.
func (q Quota) Exhausted() bool {
	return !q.Unlimited() && q.Remaining <= 0
}

// UnitType names a countable usage unit.
type UnitType string

// UnitFocusSession is a completed focus block.
const UnitFocusSession UnitType = "focus_session"
