package entitlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, entitlement.StatusActive, entitlement.ParseStatus(""))
	assert.Equal(t, entitlement.StatusActive, entitlement.ParseStatus("ACTIVE"))
	assert.Equal(t, entitlement.StatusTrial, entitlement.ParseStatus("trialing"))
	assert.Equal(t, entitlement.StatusPastDue, entitlement.ParseStatus("past_due"))
	assert.Equal(t, entitlement.StatusCancelled, entitlement.ParseStatus("canceled"))
	assert.Equal(t, entitlement.StatusCancelled, entitlement.ParseStatus("expired"))
	assert.Equal(t, entitlement.StatusCancelled, entitlement.ParseStatus("paused"), "unknown statuses fail closed")
}

func TestSubscriptionEffectiveTier(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		sub  entitlement.Subscription
		want entitlement.Tier
	}{
		{
			name: "active keeps stored tier",
			sub:  entitlement.Subscription{Tier: entitlement.TierTeam, Status: entitlement.StatusActive},
			want: entitlement.TierTeam,
		},
		{
			name: "past due keeps stored tier",
			sub:  entitlement.Subscription{Tier: entitlement.TierPro, Status: entitlement.StatusPastDue},
			want: entitlement.TierPro,
		},
		{
			name: "cancelled without expiry drops to free",
			sub:  entitlement.Subscription{Tier: entitlement.TierPro, Status: entitlement.StatusCancelled},
			want: entitlement.TierFree,
		},
		{
			name: "cancelled with future expiry keeps tier",
			sub:  entitlement.Subscription{Tier: entitlement.TierPro, Status: entitlement.StatusCancelled, ExpiresAt: &future},
			want: entitlement.TierPro,
		},
		{
			name: "cancelled after expiry drops to free",
			sub:  entitlement.Subscription{Tier: entitlement.TierPro, Status: entitlement.StatusCancelled, ExpiresAt: &past},
			want: entitlement.TierFree,
		},
		{
			name: "running trial keeps tier",
			sub:  entitlement.Subscription{Tier: entitlement.TierPro, Status: entitlement.StatusTrial, TrialEndsAt: &future},
			want: entitlement.TierPro,
		},
		{
			name: "expired trial drops to free",
			sub:  entitlement.Subscription{Tier: entitlement.TierPro, Status: entitlement.StatusTrial, TrialEndsAt: &past},
			want: entitlement.TierFree,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.sub.ResolvedAt = now
			assert.Equal(t, tt.want, tt.sub.EffectiveTier())
		})
	}
}

func TestSubscriptionIsTrialExpired(t *testing.T) {
	t.Parallel()

	ends := time.Date(2025, 3, 24, 9, 30, 0, 0, time.UTC)
	sub := entitlement.Subscription{Tier: entitlement.TierPro, Status: entitlement.StatusTrial, TrialEndsAt: &ends}

	sub.ResolvedAt = ends.Add(-time.Nanosecond)
	assert.False(t, sub.IsTrialExpired())

	sub.ResolvedAt = ends
	assert.False(t, sub.IsTrialExpired(), "trial runs through its end instant")
	assert.Equal(t, entitlement.TierPro, sub.EffectiveTier())

	sub.ResolvedAt = ends.Add(time.Nanosecond)
	assert.True(t, sub.IsTrialExpired())
	assert.Equal(t, entitlement.TierFree, sub.EffectiveTier())

	sub.Status = entitlement.StatusActive
	assert.False(t, sub.IsTrialExpired(), "only trials expire")
}

func TestSubscriptionTrialDaysRemainingAt(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ends := start.Add(14 * 24 * time.Hour)
	sub := entitlement.Subscription{Status: entitlement.StatusTrial, TrialEndsAt: &ends}

	assert.Equal(t, 14, sub.TrialDaysRemainingAt(start))
	assert.Equal(t, 1, sub.TrialDaysRemainingAt(ends.Add(-time.Minute)))
	assert.Equal(t, 0, sub.TrialDaysRemainingAt(ends))

	sub.Status = entitlement.StatusActive
	assert.Equal(t, 0, sub.TrialDaysRemainingAt(start))
}

func TestQuota(t *testing.T) {
	t.Parallel()

	unlimited := entitlement.Quota{Limit: entitlement.Unlimited, Remaining: entitlement.Unlimited}
	assert.True(t, unlimited.Unlimited())
	assert.False(t, unlimited.Exhausted())

	spent := entitlement.Quota{Limit: 5, Used: 5, Remaining: 0}
	assert.True(t, spent.Exhausted())
}

func TestNextStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from    entitlement.Status
		event   entitlement.Event
		want    entitlement.Status
		wantErr bool
	}{
		{entitlement.StatusActive, entitlement.EventStartTrial, entitlement.StatusTrial, false},
		{entitlement.StatusCancelled, entitlement.EventStartTrial, entitlement.StatusTrial, false},
		{entitlement.StatusPastDue, entitlement.EventActivate, entitlement.StatusActive, false},
		{entitlement.StatusCancelled, entitlement.EventActivate, entitlement.StatusActive, false},
		{entitlement.StatusTrial, entitlement.EventCancel, entitlement.StatusCancelled, false},
		{entitlement.StatusPastDue, entitlement.EventCancel, entitlement.StatusCancelled, false},
		{entitlement.StatusCancelled, entitlement.EventCancel, entitlement.StatusCancelled, true},
		{entitlement.StatusActive, entitlement.EventPaymentFailed, entitlement.StatusPastDue, false},
		{entitlement.StatusCancelled, entitlement.EventPaymentFailed, entitlement.StatusCancelled, true},
		{entitlement.StatusPastDue, entitlement.EventPaymentFailed, entitlement.StatusPastDue, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.event)+" from "+string(tt.from), func(t *testing.T) {
			got, err := entitlement.NextStatus(tt.from, tt.event)
			if tt.wantErr {
				require.ErrorIs(t, err, entitlement.ErrInvalidTransition)
				assert.False(t, entitlement.CanTransition(tt.from, tt.event))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := entitlement.NextStatus(entitlement.StatusActive, entitlement.Event("refund"))
	assert.ErrorIs(t, err, entitlement.ErrInvalidTransition)
}
