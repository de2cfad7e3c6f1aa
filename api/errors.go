package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/focusflow/handler"
	"github.com/dmitrymomot/focusflow/pkg/binder"
	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/svc/billing"
	"github.com/dmitrymomot/focusflow/svc/calendar"
	"github.com/dmitrymomot/focusflow/svc/coach"
)

var (
	ErrNotConfigured   = errors.New("feature is not configured on this server")
	ErrUnauthenticated = errors.New("authentication required")
)

func mapping(err error, status int, key, message string) handler.ErrorMapping {
	return handler.ErrorMapping{Err: err, HTTPError: handler.HTTPError{Code: status, Key: key, Message: message}}
}

// errorMappings is checked in order with errors.Is. ErrEmailTaken precedes
// ErrStoreUnavailable since both can describe one failed write.
var errorMappings = []handler.ErrorMapping{
	mapping(ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "Sign in to continue."),
	mapping(entitlement.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "Sign in to continue."),
	mapping(entitlement.ErrEmailTaken, http.StatusConflict, "email_taken", "This email is already registered to another account."),
	mapping(entitlement.ErrStoreUnavailable, http.StatusServiceUnavailable, "unavailable", "Your plan could not be loaded. Please try again shortly."),
	mapping(entitlement.ErrForbidden, http.StatusNotFound, "not_found", "Not found."),
	mapping(entitlement.ErrProtectedAdmin, http.StatusConflict, "protected_admin", "The root administrator cannot be demoted."),
	mapping(entitlement.ErrNotFound, http.StatusNotFound, "user_not_found", "User not found."),
	mapping(entitlement.ErrInvalidTier, http.StatusUnprocessableEntity, "invalid_tier", "Unknown plan."),
	mapping(entitlement.ErrInvalidTrialDuration, http.StatusUnprocessableEntity, "invalid_trial", "Trial length must be positive."),
	mapping(entitlement.ErrInvalidTransition, http.StatusConflict, "invalid_transition", "The subscription cannot change this way."),
	mapping(entitlement.ErrQuotaExceeded, http.StatusTooManyRequests, "quota_exceeded", "Daily focus session limit reached."),
	mapping(coach.ErrNotEntitled, http.StatusForbidden, "feature_unavailable", "AI coaching is not available on your current plan."),
	mapping(coach.ErrEmptyMessage, http.StatusUnprocessableEntity, "empty_message", "Message cannot be empty."),
	mapping(calendar.ErrNotEntitled, http.StatusForbidden, "feature_unavailable", "Calendar integration is not available on your current plan."),
	mapping(calendar.ErrNotConfigured, http.StatusServiceUnavailable, "not_configured", "Calendar integration is not configured."),
	mapping(calendar.ErrInvalidCode, http.StatusBadRequest, "invalid_code", "The authorization code is invalid or expired."),
	mapping(calendar.ErrMissingToken, http.StatusBadRequest, "missing_calendar_token", "A calendar access token is required."),
	mapping(calendar.ErrInvalidRange, http.StatusUnprocessableEntity, "invalid_range", "End must be after start."),
	mapping(calendar.ErrUnauthorizedCall, http.StatusBadRequest, "calendar_token_rejected", "Google rejected the calendar token. Connect your calendar again."),
	mapping(billing.ErrNotPaidTier, http.StatusUnprocessableEntity, "invalid_tier", "Only paid plans can be purchased."),
	mapping(billing.ErrInvalidSignature, http.StatusUnauthorized, "invalid_signature", "Webhook signature verification failed."),
	mapping(billing.ErrInvalidPayload, http.StatusBadRequest, "invalid_payload", "Webhook payload is invalid."),
	mapping(billing.ErrMissingUser, http.StatusUnprocessableEntity, "missing_user", "Webhook does not reference a user."),
	mapping(billing.ErrUnknownPrice, http.StatusUnprocessableEntity, "unknown_price", "Price is not mapped to a plan."),
	mapping(binder.ErrMissingContentType, http.StatusUnsupportedMediaType, "unsupported_media_type", "Send the body as application/json."),
	mapping(binder.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "unsupported_media_type", "Send the body as application/json."),
	mapping(binder.ErrBodyTooLarge, http.StatusRequestEntityTooLarge, "body_too_large", "Request body is too large."),
	mapping(binder.ErrFailedToParseJSON, http.StatusBadRequest, "invalid_json", "Request body must be a valid JSON object."),
	mapping(binder.ErrFailedToParseQuery, http.StatusBadRequest, "invalid_query", "Query parameters are malformed."),
	mapping(binder.ErrFailedToParsePath, http.StatusBadRequest, "invalid_path", "Path parameters are malformed."),
	mapping(ErrNotConfigured, http.StatusServiceUnavailable, "not_configured", "This feature is not configured."),
}
