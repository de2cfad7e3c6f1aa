package entitlement

import (
	"errors"
	"fmt"
)

var (
	ErrStoreUnavailable = errors.New("entitlement store unavailable")
	ErrRecordNotFound   = errors.New("subscription record not found")

	ErrUnauthenticated = errors.New("user is not authenticated")
	ErrForbidden       = errors.New("operation requires admin privileges")
	ErrProtectedAdmin  = errors.New("root admin cannot be demoted")
	ErrNotFound        = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered to another user")

	ErrInvalidTier          = errors.New("invalid plan tier")
	ErrInvalidTrialDuration = errors.New("trial duration must be positive")
	ErrInvalidTransition    = errors.New("invalid subscription status transition")
	ErrQuotaExceeded        = errors.New("daily focus session quota exceeded")
)

// StoreError describes a failure reported by a persistence collaborator.
type StoreError struct {
	Code    string // backend specific, e.g. a SQLSTATE
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store error %s: %s", e.Code, e.Message)
	}
	return "store error: " + e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
