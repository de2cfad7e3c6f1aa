package billing

import "github.com/dmitrymomot/focusflow/pkg/entitlement"

// Config holds Paddle credentials and the price of each paid tier.
type Config struct {
	APIKey        string `env:"PADDLE_API_KEY"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
	ProPriceID    string `env:"PADDLE_PRICE_PRO"`
	TeamPriceID   string `env:"PADDLE_PRICE_TEAM"`
	SuccessURL    string `env:"BILLING_SUCCESS_URL"`
}

// Enabled reports whether Paddle credentials are configured.
func (c Config) Enabled() bool {
	return c.APIKey != "" && c.WebhookSecret != ""
}

// PriceFor returns the Paddle price id of a paid tier.
func (c Config) PriceFor(t entitlement.Tier) (string, bool) {
	var id string
	switch t {
	case entitlement.TierPro:
		id = c.ProPriceID
	case entitlement.TierTeam:
		id = c.TeamPriceID
	}
	return id, id != ""
}

// TierFor maps a Paddle price id back to its tier.
func (c Config) TierFor(priceID string) (entitlement.Tier, bool) {
	switch {
	case priceID == "":
		return entitlement.TierFree, false
	case priceID == c.ProPriceID:
		return entitlement.TierPro, true
	case priceID == c.TeamPriceID:
		return entitlement.TierTeam, true
	}
	return entitlement.TierFree, false
}
