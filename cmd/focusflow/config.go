package main

// appConfig is the process-level configuration. Adapter settings live in the
// Config type of each adapter package.
type appConfig struct {
	Env            string `env:"APP_ENV" envDefault:"development"`
	Name           string `env:"APP_NAME" envDefault:"focusflow"`
	LogLevel       string `env:"LOG_LEVEL"`
	RootAdminEmail string `env:"ROOT_ADMIN_EMAIL"`
	TrialDays      int    `env:"DEFAULT_TRIAL_DAYS" envDefault:"14"`
	QuotaTimezone  string `env:"QUOTA_TIMEZONE" envDefault:"UTC"`

	// StoreDriver is "memory" or "postgres".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	// UsageDriver is "store" (count in the subscription store) or "redis".
	UsageDriver string `env:"USAGE_DRIVER" envDefault:"store"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	// MetricsAddr serves /metrics on a separate listener when set.
	MetricsAddr string `env:"METRICS_ADDR"`
}
