// Package guard gates operations on a user's entitlements.
//
// A Guard evaluates requirements built with RequireAdmin, RequirePlan,
// RequireFeature and RequireSessionQuota. They are combined with logical AND
// and checked in a fixed order: authentication, admin, plan, feature, quota.
// The first unmet requirement determines the Decision.
//
// Every Check resolves the subscription again. Nothing is cached between checks.
// When entitlements cannot be loaded the decision is a denial with
// ReasonUnavailableFailClosed, never a grant.
//
// Administrators pass plan, feature and quota requirements.
//
// Usage:
//
//	g := guard.New(entitlementSvc, guard.WithLogger(log), guard.WithMetrics(guard.NewMetrics(reg)))
//
//	d := g.Check(ctx, userID, guard.RequireFeature(entitlement.CapabilityAICoaching))
//	if !d.Allowed {
//	    notice := d.Notice() // title, description and calls to action
//	}
//
//	r.With(g.Middleware(guard.RequireSessionQuota())).Post("/focus-sessions", h)
//
// Middleware maps denials to HTTP statuses: 401 unauthenticated, 404 admin
// (the admin surface is not advertised), 403 plan or feature, 429 quota and
// 503 when entitlements are unavailable.
package guard
