// Package config loads typed configuration from environment variables.
//
// It wraps github.com/caarlos0/env/v11 for struct parsing and
// github.com/joho/godotenv for optional .env files. Each adapter in this
// module declares its own Config struct with `env` and `envDefault` tags and
// the command wiring loads them with Load:
//
//	var pgCfg pg.Config
//	if err := config.Load(&pgCfg); err != nil {
//	    return err
//	}
//
// Parsed configs are cached by type. ResetCache clears the cache in tests.
package config
