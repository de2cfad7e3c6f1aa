package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/pg"
)

// DB is the subset of pgxpool.Pool (or pgx.Tx) the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is a Postgres backed entitlement.Store and entitlement.UsageCounter.
type Store struct {
	db      DB
	timeout time.Duration
}

var (
	_ entitlement.Store               = (*Store)(nil)
	_ entitlement.UsageCounter        = (*Store)(nil)
	_ entitlement.LimitedUsageCounter = (*Store)(nil)
)

// Option configures Store.
type Option func(*Store)

// WithQueryTimeout bounds queries whose context carries no deadline.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// New creates a Store on top of db. It panics if db is nil.
func New(db DB, opts ...Option) *Store {
	if db == nil {
		panic("store: db cannot be nil")
	}
	s := &Store{db: db, timeout: 3 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

const selectSubscription = `SELECT user_id, COALESCE(email, ''), plan_type, status, is_admin,
       trial_ends_at, subscription_expires_at, created_at, updated_at
  FROM subscriptions`

func scanRecord(row pgx.Row) (entitlement.Record, error) {
	var rec entitlement.Record
	err := row.Scan(&rec.UserID, &rec.Email, &rec.PlanType, &rec.Status, &rec.IsAdmin,
		&rec.TrialEndsAt, &rec.ExpiresAt, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

func (s *Store) GetSubscription(ctx context.Context, userID uuid.UUID) (*entitlement.Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec, err := scanRecord(s.db.QueryRow(ctx, selectSubscription+` WHERE user_id = $1`, userID))
	if err != nil {
		return nil, storeError("get subscription", err)
	}
	return &rec, nil
}

// UpdateSubscription upserts the row. Fields missing from the patch keep their
// stored value, or the column default for a new row.
func (s *Store) UpdateSubscription(ctx context.Context, userID uuid.UUID, patch entitlement.Patch) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var planType, status *string
	if patch.Tier != nil {
		v := patch.Tier.String()
		planType = &v
	}
	if patch.Status != nil {
		v := string(*patch.Status)
		status = &v
	}

	const q = `INSERT INTO subscriptions AS s
    (user_id, plan_type, status, is_admin, trial_ends_at, subscription_expires_at)
VALUES ($1, COALESCE($2::text, 'free'), COALESCE($3::text, 'active'), COALESCE($4::boolean, FALSE),
        $5::timestamptz, $6::timestamptz)
ON CONFLICT (user_id) DO UPDATE SET
    plan_type = COALESCE($2::text, s.plan_type),
    status = COALESCE($3::text, s.status),
    is_admin = COALESCE($4::boolean, s.is_admin),
    trial_ends_at = COALESCE($5::timestamptz, s.trial_ends_at),
    subscription_expires_at = CASE WHEN $7::boolean THEN NULL
                                   ELSE COALESCE($6::timestamptz, s.subscription_expires_at) END,
    updated_at = now()`

	_, err := s.db.Exec(ctx, q, userID, planType, status, patch.IsAdmin,
		patch.TrialEndsAt, patch.ExpiresAt, patch.ClearExpiresAt)
	return storeError("update subscription", err)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT user_id FROM subscriptions WHERE lower(email) = lower($1)`, email).Scan(&id)
	if err != nil {
		return uuid.Nil, storeError("find user by email", err)
	}
	return id, nil
}

// CreateSubscription inserts rec. When the user already has a row its plan is
// kept and only a missing email is filled in. A duplicate email on another user
// is reported with SQLSTATE 23505 and wraps entitlement.ErrEmailTaken.
func (s *Store) CreateSubscription(ctx context.Context, rec entitlement.Record) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	const q = `INSERT INTO subscriptions
    (user_id, email, plan_type, status, is_admin, trial_ends_at, subscription_expires_at)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
ON CONFLICT (user_id) DO UPDATE SET
    email = COALESCE(subscriptions.email, EXCLUDED.email),
    is_admin = subscriptions.is_admin OR EXCLUDED.is_admin,
    updated_at = CASE
        WHEN subscriptions.email IS NULL AND EXCLUDED.email IS NOT NULL THEN now()
        ELSE subscriptions.updated_at
    END`

	_, err := s.db.Exec(ctx, q, rec.UserID, rec.Email, rec.PlanType, rec.Status, rec.IsAdmin,
		rec.TrialEndsAt, rec.ExpiresAt)
	if pg.IsDuplicateKeyError(err) {
		return storeError("create subscription", errors.Join(entitlement.ErrEmailTaken, err))
	}
	return storeError("create subscription", err)
}

func (s *Store) ListSubscriptions(ctx context.Context) ([]entitlement.Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, selectSubscription+` ORDER BY created_at, user_id`)
	if err != nil {
		return nil, storeError("list subscriptions", err)
	}
	defer rows.Close()

	var out []entitlement.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storeError("list subscriptions", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list subscriptions", err)
	}
	return out, nil
}

// CountUnitsForDay counts completed focus sessions created in [start, end).
func (s *Store) CountUnitsForDay(ctx context.Context, userID uuid.UUID, unit entitlement.UnitType, start, end time.Time) (int64, error) {
	if unit != entitlement.UnitFocusSession {
		return 0, errors.Join(ErrUnsupportedUnit, errors.New(string(unit)))
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	const q = `SELECT count(*) FROM focus_sessions
 WHERE user_id = $1 AND status = 'completed' AND created_at >= $2 AND created_at < $3`

	var n int64
	if err := s.db.QueryRow(ctx, q, userID, start, end).Scan(&n); err != nil {
		return 0, storeError("count focus sessions", err)
	}
	return n, nil
}

// RecordUnit stores a completed focus session at the given time.
func (s *Store) RecordUnit(ctx context.Context, userID uuid.UUID, unit entitlement.UnitType, at time.Time) error {
	if unit != entitlement.UnitFocusSession {
		return errors.Join(ErrUnsupportedUnit, errors.New(string(unit)))
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.Exec(ctx,
		`INSERT INTO focus_sessions (user_id, status, created_at) VALUES ($1, 'completed', $2)`,
		userID, at)
	return storeError("record focus session", err)
}

// RecordUnitWithin stores a completed focus session unless [start, end) already
// holds limit sessions. A transaction scoped advisory lock on the user
// serializes concurrent callers.
func (s *Store) RecordUnitWithin(ctx context.Context, userID uuid.UUID, unit entitlement.UnitType, at, start, end time.Time, limit int64) (int64, bool, error) {
	if unit != entitlement.UnitFocusSession {
		return 0, false, errors.Join(ErrUnsupportedUnit, errors.New(string(unit)))
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, false, storeError("begin focus session", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, userID); err != nil {
		return 0, false, storeError("lock focus sessions", err)
	}

	var n int64
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM focus_sessions
 WHERE user_id = $1 AND status = 'completed' AND created_at >= $2 AND created_at < $3`,
		userID, start, end).Scan(&n); err != nil {
		return 0, false, storeError("count focus sessions", err)
	}
	if n >= limit {
		return n, false, nil
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO focus_sessions (user_id, status, created_at) VALUES ($1, 'completed', $2)`,
		userID, at); err != nil {
		return 0, false, storeError("record focus session", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, false, storeError("commit focus session", err)
	}
	return n + 1, true, nil
}
