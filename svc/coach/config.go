package coach

import "time"

// Config configures the OpenRouter chat client.
type Config struct {
	APIKey      string        `env:"OPENROUTER_API_KEY"`
	BaseURL     string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	Model       string        `env:"OPENROUTER_MODEL" envDefault:"deepseek/deepseek-r1-0528-qwen3-8b:free"`
	MaxTokens   int           `env:"COACH_MAX_TOKENS" envDefault:"300"`
	Temperature float64       `env:"COACH_TEMPERATURE" envDefault:"0.8"`
	Timeout     time.Duration `env:"COACH_TIMEOUT" envDefault:"30s"`
	MaxHistory  int           `env:"COACH_MAX_HISTORY" envDefault:"20"`
}
