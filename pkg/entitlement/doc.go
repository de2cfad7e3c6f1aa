// Package entitlement decides what a FocusFlow user may do based on their plan.
//
// It owns the static plan catalog (tier to feature set), resolves a user's
// subscription state from a Store, and answers capability and daily quota
// questions. It also applies the subscription lifecycle: trials, plan changes,
// cancellation, payment failure, and admin elevation.
//
// # Architecture
//
// The catalog is compile-time data in plan.go. Tiers are totally ordered
// (free < pro < team) and each tier's capability set contains the one below it.
//
// Service is the only stateful component. It holds no cache: every call
// re-reads the Store, so plan changes take effect on the next check. Reads used
// for gating fail closed. A missing record resolves to free/active, while a store
// failure surfaces as ErrStoreUnavailable and never as a grant.
//
// Gating uses the effective tier. A cancelled subscription keeps its tier until
// ExpiresAt, and an expired trial falls back to free.
//
// Administrators bypass capability, plan and quota checks. The root admin is
// configured by email (WithRootAdmin) and cannot be demoted.
//
// # Quick Start
//
//	store := entitlement.NewMemoryStore()
//	svc := entitlement.NewService(store, store,
//	    entitlement.WithRootAdmin("owner@example.com"),
//	    entitlement.WithLogger(log),
//	)
//
//	ok, err := svc.HasCapability(ctx, userID, entitlement.CapabilityAICoaching)
//	if err != nil {
//	    // treat as denied
//	}
//
//	q, err := svc.RemainingQuota(ctx, userID, time.Now())
//
// # Persistence
//
// Store and UsageCounter are implemented by MemoryStore here, by the Postgres
// adapter in svc/store and, for counting only, by the Redis adapter in svc/usage.
package entitlement
