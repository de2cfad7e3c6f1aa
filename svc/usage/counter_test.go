package usage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/svc/usage"
)

func TestCounterErrors(t *testing.T) {
	t.Parallel()

	// Nothing listens on port 1.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	c := usage.New(client, usage.Config{})
	ctx := context.Background()
	now := time.Now()

	t.Run("count failure is a store error", func(t *testing.T) {
		_, err := c.CountUnitsForDay(ctx, uuid.New(), entitlement.UnitFocusSession, now.Add(-time.Hour), now)
		var se *entitlement.StoreError
		require.ErrorAs(t, err, &se)
		assert.NotEmpty(t, se.Code)
	})

	t.Run("record failure is a store error", func(t *testing.T) {
		err := c.RecordUnit(ctx, uuid.New(), entitlement.UnitFocusSession, now)
		var se *entitlement.StoreError
		require.ErrorAs(t, err, &se)
	})

	t.Run("limited record failure is a store error", func(t *testing.T) {
		_, recorded, err := c.RecordUnitWithin(ctx, uuid.New(), entitlement.UnitFocusSession, now, now.Add(-time.Hour), now.Add(time.Hour), 5)
		var se *entitlement.StoreError
		require.ErrorAs(t, err, &se)
		assert.False(t, recorded)
	})

	t.Run("nil client panics", func(t *testing.T) {
		assert.Panics(t, func() { usage.New(nil, usage.Config{}) })
	})
}
