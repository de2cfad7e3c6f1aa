package calendar

import "errors"

var (
	ErrNotEntitled      = errors.New("calendar integration is not included in the current plan")
	ErrNotConfigured    = errors.New("google calendar is not configured")
	ErrInvalidCode      = errors.New("calendar: invalid authorization code")
	ErrMissingToken     = errors.New("calendar: access token is required")
	ErrInvalidRange     = errors.New("calendar: end must be after start")
	ErrFetchEvents      = errors.New("calendar: failed to fetch events")
	ErrUnauthorizedCall = errors.New("calendar: google rejected the access token")
)
