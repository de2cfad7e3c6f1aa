package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/svc/store"
)

type fakeRow struct {
	err error
}

func (r fakeRow) Scan(dest ...any) error { return r.err }

type fakeDB struct {
	execErr  error
	rowErr   error
	deadline bool
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	_, f.deadline = ctx.Deadline()
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, f.execErr
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, f.execErr
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	_, f.deadline = ctx.Deadline()
	return fakeRow{err: f.rowErr}
}

func TestStoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("missing row is reported as record not found", func(t *testing.T) {
		s := store.New(&fakeDB{rowErr: pgx.ErrNoRows})

		_, err := s.GetSubscription(ctx, userID)
		assert.ErrorIs(t, err, entitlement.ErrRecordNotFound)

		_, err = s.FindUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, entitlement.ErrRecordNotFound)
	})

	t.Run("server errors carry the SQLSTATE", func(t *testing.T) {
		s := store.New(&fakeDB{execErr: &pgconn.PgError{Code: "23505", Message: "duplicate key"}})

		err := s.CreateSubscription(ctx, entitlement.Record{UserID: userID, Email: "a@example.com"})
		var se *entitlement.StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "23505", se.Code)
		assert.Contains(t, se.Message, "duplicate key")
		assert.ErrorIs(t, err, entitlement.ErrEmailTaken)
	})

	t.Run("other server errors are not reported as a taken email", func(t *testing.T) {
		s := store.New(&fakeDB{execErr: &pgconn.PgError{Code: "08006", Message: "connection failure"}})

		err := s.CreateSubscription(ctx, entitlement.Record{UserID: userID, Email: "a@example.com"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, entitlement.ErrEmailTaken)
	})

	t.Run("timeouts are coded", func(t *testing.T) {
		s := store.New(&fakeDB{rowErr: context.DeadlineExceeded})

		_, err := s.CountUnitsForDay(ctx, userID, entitlement.UnitFocusSession, time.Now(), time.Now())
		var se *entitlement.StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "timeout", se.Code)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("unknown units are rejected", func(t *testing.T) {
		s := store.New(&fakeDB{})

		err := s.RecordUnit(ctx, userID, entitlement.UnitType("pomodoro"), time.Now())
		assert.ErrorIs(t, err, store.ErrUnsupportedUnit)

		_, _, err = s.RecordUnitWithin(ctx, userID, entitlement.UnitType("pomodoro"), time.Now(), time.Now(), time.Now(), 5)
		assert.ErrorIs(t, err, store.ErrUnsupportedUnit)
	})

	t.Run("limited record fails as a store error when no transaction starts", func(t *testing.T) {
		s := store.New(&fakeDB{execErr: errors.New("connection refused")})

		now := time.Now()
		n, ok, err := s.RecordUnitWithin(ctx, userID, entitlement.UnitFocusSession, now, now.Add(-time.Hour), now.Add(time.Hour), 5)
		var se *entitlement.StoreError
		require.ErrorAs(t, err, &se)
		assert.False(t, ok)
		assert.Zero(t, n)
	})
}

func TestStoreQueryTimeout(t *testing.T) {
	t.Parallel()

	t.Run("query gets a deadline by default", func(t *testing.T) {
		db := &fakeDB{}
		s := store.New(db)
		require.NoError(t, s.UpdateSubscription(context.Background(), uuid.New(), entitlement.Patch{}))
		assert.True(t, db.deadline)
	})

	t.Run("zero timeout leaves the context alone", func(t *testing.T) {
		db := &fakeDB{}
		s := store.New(db, store.WithQueryTimeout(0))
		require.NoError(t, s.UpdateSubscription(context.Background(), uuid.New(), entitlement.Patch{}))
		assert.False(t, db.deadline)
	})

	t.Run("nil db panics", func(t *testing.T) {
		assert.Panics(t, func() { store.New(nil) })
	})
}
