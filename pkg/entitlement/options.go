package entitlement

import (
	"log/slog"
	"strings"
	"time"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithClock replaces time.Now. Tests use it to move across trial and quota boundaries.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone whose calendar day bounds the daily quota.
// Defaults to UTC.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRootAdmin sets the email of the protected root administrator.
// The root admin cannot be demoted and is granted admin by BootstrapRootAdmin.
func WithRootAdmin(email string) ServiceOption {
	return func(s *service) {
		s.rootAdminEmail = normalizeEmail(email)
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDefaultTrialDays sets the trial length used when StartTrial gets zero days
// through StartDefaultTrial.
func WithDefaultTrialDays(days int) ServiceOption {
	return func(s *service) {
		if days > 0 {
			s.defaultTrialDays = days
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
