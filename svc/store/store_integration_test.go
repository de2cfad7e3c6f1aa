//go:build integration

package store_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/logger"
	"github.com/dmitrymomot/focusflow/pkg/pg"
	"github.com/dmitrymomot/focusflow/svc/store"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("focusflow"),
		postgres.WithUsername("focusflow"),
		postgres.WithPassword("focusflow"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := pg.Config{
		ConnectionString: dsn,
		MaxConns:         4,
		RetryAttempts:    5,
		RetryInterval:    time.Second,
		MigrationsTable:  "schema_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, store.Migrate(ctx, pool, cfg, logger.Discard()))
	return store.New(pool)
}

func TestStoreIntegration(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()

	t.Run("create is idempotent per user", func(t *testing.T) {
		rec := entitlement.Record{UserID: alice, Email: "alice@example.com", PlanType: "free", Status: "active"}
		require.NoError(t, s.CreateSubscription(ctx, rec))
		require.NoError(t, s.CreateSubscription(ctx, rec))

		got, err := s.GetSubscription(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.Equal(t, "free", got.PlanType)
		assert.Nil(t, got.ExpiresAt)
	})

	t.Run("duplicate email on another user fails with unique violation", func(t *testing.T) {
		err := s.CreateSubscription(ctx, entitlement.Record{UserID: bob, Email: "alice@example.com", PlanType: "free", Status: "active"})
		var se *entitlement.StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "23505", se.Code)
		assert.ErrorIs(t, err, entitlement.ErrEmailTaken)
	})

	t.Run("create on an existing row fills a missing email and keeps the plan", func(t *testing.T) {
		carol := uuid.New()
		ends := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.CreateSubscription(ctx, entitlement.Record{
			UserID: carol, PlanType: "pro", Status: "trial", TrialEndsAt: &ends,
		}))
		require.NoError(t, s.CreateSubscription(ctx, entitlement.Record{
			UserID: carol, Email: "carol@example.com", PlanType: "free", Status: "active",
		}))

		got, err := s.GetSubscription(ctx, carol)
		require.NoError(t, err)
		assert.Equal(t, "carol@example.com", got.Email)
		assert.Equal(t, "pro", got.PlanType)
		assert.Equal(t, "trial", got.Status)

		id, err := s.FindUserByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.Equal(t, carol, id)

		require.NoError(t, s.CreateSubscription(ctx, entitlement.Record{
			UserID: carol, Email: "other@example.com", PlanType: "free", Status: "active",
		}))
		got, err = s.GetSubscription(ctx, carol)
		require.NoError(t, err)
		assert.Equal(t, "carol@example.com", got.Email)
	})

	t.Run("lookup by email ignores case", func(t *testing.T) {
		id, err := s.FindUserByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice, id)

		_, err = s.FindUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, entitlement.ErrRecordNotFound)
	})

	t.Run("update patches only the given fields", func(t *testing.T) {
		tier := entitlement.TierPro
		status := entitlement.StatusActive
		expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.UpdateSubscription(ctx, alice, entitlement.Patch{Tier: &tier, Status: &status, ExpiresAt: &expires}))

		admin := true
		require.NoError(t, s.UpdateSubscription(ctx, alice, entitlement.Patch{IsAdmin: &admin}))

		got, err := s.GetSubscription(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "pro", got.PlanType)
		assert.True(t, got.IsAdmin)
		require.NotNil(t, got.ExpiresAt)
		assert.True(t, expires.Equal(*got.ExpiresAt))

		require.NoError(t, s.UpdateSubscription(ctx, alice, entitlement.Patch{ClearExpiresAt: true}))
		got, err = s.GetSubscription(ctx, alice)
		require.NoError(t, err)
		assert.Nil(t, got.ExpiresAt)
		assert.Equal(t, "pro", got.PlanType)
	})

	t.Run("update creates a missing row", func(t *testing.T) {
		tier := entitlement.TierTeam
		require.NoError(t, s.UpdateSubscription(ctx, bob, entitlement.Patch{Tier: &tier}))

		got, err := s.GetSubscription(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, "team", got.PlanType)
		assert.Equal(t, "active", got.Status)
		assert.Empty(t, got.Email)
	})

	t.Run("list returns every row", func(t *testing.T) {
		recs, err := s.ListSubscriptions(ctx)
		require.NoError(t, err)
		assert.Len(t, recs, 3)
	})

	t.Run("focus sessions are counted per day window", func(t *testing.T) {
		day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.RecordUnit(ctx, alice, entitlement.UnitFocusSession, day.Add(9*time.Hour)))
		require.NoError(t, s.RecordUnit(ctx, alice, entitlement.UnitFocusSession, day.Add(23*time.Hour)))
		require.NoError(t, s.RecordUnit(ctx, alice, entitlement.UnitFocusSession, day.Add(24*time.Hour)))

		n, err := s.CountUnitsForDay(ctx, alice, entitlement.UnitFocusSession, day, day.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = s.CountUnitsForDay(ctx, bob, entitlement.UnitFocusSession, day, day.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("limited record admits exactly the limit under concurrency", func(t *testing.T) {
		day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		var admitted atomic.Int64
		var g errgroup.Group
		for i := 0; i < 12; i++ {
			g.Go(func() error {
				_, ok, err := s.RecordUnitWithin(ctx, bob, entitlement.UnitFocusSession,
					day.Add(10*time.Hour), day, day.Add(24*time.Hour), 5)
				if ok {
					admitted.Add(1)
				}
				return err
			})
		}
		require.NoError(t, g.Wait())
		assert.Equal(t, int64(5), admitted.Load())

		n, err := s.CountUnitsForDay(ctx, bob, entitlement.UnitFocusSession, day, day.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)

		n, ok, err := s.RecordUnitWithin(ctx, bob, entitlement.UnitFocusSession,
			day.Add(30*time.Hour), day.Add(24*time.Hour), day.Add(48*time.Hour), 5)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(1), n)
	})

	t.Run("service runs end to end on postgres", func(t *testing.T) {
		svc := entitlement.NewService(s, s, entitlement.WithRootAdmin("root@focusflow.app"))
		carol := uuid.New()

		_, err := svc.Register(ctx, carol, "carol@example.com")
		require.NoError(t, err)

		sub, err := svc.StartDefaultTrial(ctx, carol)
		require.NoError(t, err)
		assert.Equal(t, entitlement.StatusTrial, sub.Status)

		q, err := svc.RecordFocusSession(ctx, carol)
		require.NoError(t, err)
		assert.Equal(t, int64(1), q.Used)
	})
}
