package entitlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists subscription records. Implementations return ErrRecordNotFound
// (possibly joined) when a lookup has no match and *StoreError for backend failures.
type Store interface {
	GetSubscription(ctx context.Context, userID uuid.UUID) (*Record, error)
	// UpdateSubscription applies the patch, creating a free/active row if none exists.
	UpdateSubscription(ctx context.Context, userID uuid.UUID, patch Patch) error
	FindUserByEmail(ctx context.Context, email string) (uuid.UUID, error)
	// CreateSubscription inserts the record. An existing row keeps its plan and
	// only gains a missing email; an email owned by another user wraps ErrEmailTaken.
	CreateSubscription(ctx context.Context, rec Record) error
	ListSubscriptions(ctx context.Context) ([]Record, error)
}

// UsageCounter counts metered units such as completed focus sessions.
type UsageCounter interface {
	// CountUnitsForDay counts units recorded in [start, end).
	CountUnitsForDay(ctx context.Context, userID uuid.UUID, unit UnitType, start, end time.Time) (int64, error)
	RecordUnit(ctx context.Context, userID uuid.UUID, unit UnitType, at time.Time) error
}

// LimitedUsageCounter is implemented by counters that can check a limit and
// record a unit as one atomic step. RecordFocusSession prefers it, so parallel
// requests cannot overrun a daily quota.
type LimitedUsageCounter interface {
	UsageCounter
	// RecordUnitWithin records a unit at `at` only while fewer than limit units
	// exist in [start, end). It returns the count including the new unit, or the
	// unchanged count and false when the limit was already reached.
	RecordUnitWithin(ctx context.Context, userID uuid.UUID, unit UnitType, at, start, end time.Time, limit int64) (int64, bool, error)
}
