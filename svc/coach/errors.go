package coach

import "errors"

var (
	ErrNotEntitled      = errors.New("ai coaching is not included in the current plan")
	ErrEmptyMessage     = errors.New("message cannot be empty")
	ErrAPIKeyRequired   = errors.New("openrouter api key is required")
	ErrRequestFailed    = errors.New("chat completion request failed")
	ErrEmptyCompletion  = errors.New("chat completion returned no content")
	ErrRateLimitReached = errors.New("chat completion rate limit reached")
)
