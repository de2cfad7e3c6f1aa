package calendar

import "time"

// Config holds Google OAuth and Calendar API settings.
type Config struct {
	ClientID     string        `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string        `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string        `env:"GOOGLE_OAUTH_REDIRECT_URL"`
	Scopes       []string      `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/calendar.readonly"`
	APIBaseURL   string        `env:"GOOGLE_CALENDAR_API_URL" envDefault:"https://www.googleapis.com/calendar/v3"`
	Timeout      time.Duration `env:"GOOGLE_CALENDAR_TIMEOUT" envDefault:"10s"`
	MaxResults   int           `env:"GOOGLE_CALENDAR_MAX_RESULTS" envDefault:"250"`
}

// Enabled reports whether OAuth credentials are configured.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
