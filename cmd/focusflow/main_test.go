package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/logger"
)

func TestPrintPlans(t *testing.T) {
	t.Parallel()

	t.Run("table lists every tier", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, printPlans(&buf, false))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[1], "free"))
		assert.Contains(t, lines[1], "0.00 EUR")
		assert.Contains(t, lines[1], " 5 ")
		assert.Contains(t, lines[2], "9.99 EUR")
		assert.Contains(t, lines[2], "unlimited")
		assert.Contains(t, lines[3], "ssoIntegration")
	})

	t.Run("json carries limits", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, printPlans(&buf, true))

		var plans []struct {
			Tier   string `json:"tier"`
			Limits struct {
				MaxFocusSessions int64 `json:"maxFocusSessions"`
			} `json:"limits"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &plans))
		require.Len(t, plans, 3)
		assert.Equal(t, "team", plans[2].Tier)
		assert.Equal(t, entitlement.Unlimited, plans[2].Limits.MaxFocusSessions)
	})
}

func TestNewApp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := appConfig{StoreDriver: "memory", UsageDriver: "store", QuotaTimezone: "UTC", TrialDays: 14}

	t.Run("unknown store driver is rejected", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.StoreDriver = "sqlite"
		_, err := newApp(ctx, cfg, logger.Discard())
		require.ErrorIs(t, err, errUnknownDriver)
	})

	t.Run("invalid timezone is rejected", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.QuotaTimezone = "Mars/Olympus"
		_, err := newApp(ctx, cfg, logger.Discard())
		require.Error(t, err)
	})

	t.Run("lookup resolves ids and emails", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.RootAdminEmail = "root@focusflow.app"
		a, err := newApp(ctx, cfg, logger.Discard())
		require.NoError(t, err)
		defer a.Close()

		id := uuid.New()
		_, err = a.svc.Register(ctx, id, "Root@FocusFlow.app")
		require.NoError(t, err)

		got, err := a.lookupUser(ctx, "root@focusflow.app")
		require.NoError(t, err)
		assert.Equal(t, id, got)

		got, err = a.lookupUser(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, id, got)

		op, err := a.operator(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, op)

		_, err = a.lookupUser(ctx, "nobody@example.com")
		require.ErrorIs(t, err, entitlement.ErrNotFound)

		_, err = a.lookupUser(ctx, "not-an-identifier")
		require.Error(t, err)
	})
}

func TestPlansCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"plans", "--json"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"maxFocusSessions": 5`)
}
