package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

// Classifier strategies selectable at startup.
const (
	ClassifierAuto   = "auto"
	ClassifierLLM    = "llm"
	ClassifierStatic = "static"
)

// Config holds all configuration for the API server.
type Config struct {
	Port int    `env:"PORT" envDefault:"8000"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	Log      LogConfig
	Database DatabaseConfig
	Auth     AuthConfig
	LLM      LLMConfig

	// CORSAllowedOrigins is the list of origins allowed by the CORS middleware.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// RateLimitRPS and RateLimitBurst bound per-IP calls to the LLM-backed routes.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0.5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"blogspace"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN returns the libpq-style connection string understood by pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type AuthConfig struct {
	AccessSecret  string        `env:"ACCESS_SECRET_KEY,required,notEmpty"`
	RefreshSecret string        `env:"REFRESH_SECRET_KEY,required,notEmpty"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
}

type LLMConfig struct {
	// Classifier is one of auto, llm or static. auto picks llm when an API key is set.
	Classifier string        `env:"CLASSIFIER" envDefault:"auto"`
	APIKey     string        `env:"GROQ_API_KEY"`
	BaseURL    string        `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1/"`
	Model      string        `env:"GROQ_MODEL" envDefault:"llama3-70b-8192"`
	Timeout    time.Duration `env:"LLM_TIMEOUT" envDefault:"10s"`
	CacheTTL   time.Duration `env:"CLASSIFIER_CACHE_TTL" envDefault:"10m"`
}

// UseLLM reports whether the LLM-backed strategies should be composed in.
func (l LLMConfig) UseLLM() bool {
	switch l.Classifier {
	case ClassifierLLM:
		return true
	case ClassifierStatic:
		return false
	default:
		return l.APIKey != ""
	}
}

// Load reads configuration from the environment (and .env, when present).
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.LLM.Classifier {
	case ClassifierAuto, ClassifierLLM, ClassifierStatic:
	default:
		return nil, fmt.Errorf("invalid CLASSIFIER %q: want auto, llm or static", cfg.LLM.Classifier)
	}
	if cfg.LLM.Classifier == ClassifierLLM && cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("CLASSIFIER=llm requires GROQ_API_KEY")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return &cfg, nil
}
