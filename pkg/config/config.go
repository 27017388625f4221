package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries every tunable the chatbot core reads from the environment.
type Config struct {
	Provider       string        `envconfig:"CHATBOT_PROVIDER" default:"gemini"`
	Model          string        `envconfig:"CHATBOT_MODEL" default:"gemini-2.0-flash"`
	EmbedProvider  string        `envconfig:"CHATBOT_EMBED_PROVIDER" default:"gemini"`
	MaxIterations  int           `envconfig:"CHATBOT_MAX_ITERATIONS" default:"5"`
	ToolParallel   int           `envconfig:"CHATBOT_TOOL_PARALLELISM" default:"1"`
	AllowedDomains []string      `envconfig:"CHATBOT_ALLOWED_DOMAINS" default:"mmdc.mcl.edu.ph,mcl.edu.ph"`
	HistoryLimit   int           `envconfig:"CHATBOT_HISTORY_LIMIT" default:"20"`
	SessionTTL     time.Duration `envconfig:"CHATBOT_SESSION_TTL" default:"24h"`
	RedisAddr      string        `envconfig:"CHATBOT_REDIS_ADDR"`
	PostgresDSN    string        `envconfig:"CHATBOT_POSTGRES_DSN"`
	MongoURI       string        `envconfig:"CHATBOT_MONGO_URI"`
	MongoDatabase  string        `envconfig:"CHATBOT_MONGO_DB" default:"portal"`
	LogLevel       string        `envconfig:"CHATBOT_LOG_LEVEL" default:"info"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.MaxIterations <= 0 {
		return nil, fmt.Errorf("CHATBOT_MAX_ITERATIONS must be greater than zero")
	}
	return &cfg, nil
}
