package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del relay.
type Config struct {
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"8000"`
	AnthropicAPIKey    string        `env:"ANTHROPIC_API_KEY,required,notEmpty"`
	LLMBaseURL         string        `env:"LLM_BASE_URL" envDefault:"https://api.anthropic.com"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	RateLimitMax       int           `env:"RATE_LIMIT_MAX" envDefault:"30"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	JWTSecret          string        `env:"JWT_SECRET"`
	MetricsEnabled     bool          `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsModels      []string      `env:"METRICS_MODELS" envSeparator:"," envDefault:"claude-3-opus-20240229,claude-3-haiku-20240307"`
}

// LoadConfig carga la configuración desde variables de entorno.
// Sin ANTHROPIC_API_KEY devuelve error y el proceso no debe arrancar.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.CORSAllowedOrigins = normalizeOrigins(cfg.CORSAllowedOrigins)
	return &cfg, nil
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
