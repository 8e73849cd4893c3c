package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Search SearchConfig
	Upload UploadConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8000"`
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"300s"`
}

type LLMConfig struct {
	APIKey      string        `envconfig:"GROQ_API_KEY" required:"true"`
	APIEndpoint string        `envconfig:"LLM_ENDPOINT" default:"https://api.groq.com/openai/v1"`
	Model       string        `envconfig:"LLM_MODEL" default:"qwen/qwen3-32b"`
	MaxTokens   int64         `envconfig:"LLM_MAX_TOKENS" default:"4096"`
	Temperature float64       `envconfig:"LLM_TEMPERATURE" default:"0.2"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"120s"`
}

type SearchConfig struct {
	APIKey      string        `envconfig:"SEARCH_API_KEY"`
	APIEndpoint string        `envconfig:"SEARCH_ENDPOINT" default:"https://api.tavily.com"`
	MaxResults  int           `envconfig:"SEARCH_MAX_RESULTS" default:"5"`
	Timeout     time.Duration `envconfig:"SEARCH_TIMEOUT" default:"15s"`
}

type UploadConfig struct {
	Dir            string        `envconfig:"UPLOAD_DIR" default:"tmp"`
	MaxBytes       int64         `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
	CleanupCron    string        `envconfig:"UPLOAD_CLEANUP_CRON" default:"@hourly"`
	MaxArtifactAge time.Duration `envconfig:"UPLOAD_MAX_ARTIFACT_AGE" default:"24h"`
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	// envconfig's required tag accepts a set-but-empty variable
	if cfg.LLM.APIKey == "" {
		return nil, errors.New("required key GROQ_API_KEY missing value")
	}

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %q: %w", cfg.Upload.Dir, err)
	}

	slog.Info("configuration loaded successfully", "artifactDir", cfg.Upload.Dir)
	return &cfg, nil
}
