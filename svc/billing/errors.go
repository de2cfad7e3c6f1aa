package billing

import "errors"

var (
	ErrAPIKeyRequired        = errors.New("paddle api key is required")
	ErrWebhookSecretRequired = errors.New("paddle webhook secret is required")
	ErrInvalidEnvironment    = errors.New("invalid paddle environment")
	ErrInvalidSignature      = errors.New("webhook signature verification failed")
	ErrInvalidPayload        = errors.New("invalid webhook payload")
	ErrNotPaidTier           = errors.New("checkout requires a paid tier")
	ErrUnknownPrice          = errors.New("price is not mapped to a tier")
	ErrMissingUser           = errors.New("webhook has no user id in custom data")
	ErrNoCheckoutURL         = errors.New("no checkout URL returned from paddle")
)
