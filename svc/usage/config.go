package usage

import "time"

// Config controls key layout and retention of the Redis usage counter.
type Config struct {
	KeyPrefix string        `env:"USAGE_KEY_PREFIX" envDefault:"focusflow:usage"`
	Retention time.Duration `env:"USAGE_RETENTION" envDefault:"48h"`
}
