// Package api is the FocusFlow HTTP API.
//
// NewRouter mounts health, metrics and the versioned /v1 routes on a chi
// router. Bearer tokens are verified by pkg/jwt; gated routes are wrapped in
// access guard middleware, so a denied request never reaches its handler and
// gets the guard's status and upgrade notice instead:
//
//	POST /v1/focus-sessions        daily session quota
//	POST /v1/coach/chat            aiCoaching
//	GET  /v1/calendar/events       calendarIntegration
//	GET  /v1/admin/users           admin (404 for everyone else)
//
// Handlers are typed handler.HandlerFunc values; request bodies, query strings
// and path parameters are bound by pkg/binder and checked with pkg/validator.
// Successful responses use the envelope {"data": ..., "meta": ...}; failures
// use {"error": {"code", "message", "details"}}, with domain errors mapped to
// statuses by the errorMappings table.
package api
