package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"docsummarizer/internal/domain"
)

var ErrMissingAPIKey = errors.New("GROQ_API_KEY or GROQ_API_KEY_FILE is required")

type Config struct {
	GroqAPIKey string `env:"GROQ_API_KEY"`
	// GroqAPIKeyFile holds the content of the file named by GROQ_API_KEY_FILE.
	GroqAPIKeyFile string `env:"GROQ_API_KEY_FILE,file"`
	GroqBaseURL    string `env:"GROQ_BASE_URL"          envDefault:"https://api.groq.com/openai/v1/"`

	HTTPAddr    string   `env:"HTTP_ADDR"    envDefault:":8080"`
	CORSOrigins []string `env:"CORS_ORIGINS"`
	DBPath      string   `env:"DB_PATH"      envDefault:"db.sqlite"`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers  []int64 `env:"ALLOWED_USERS"`

	DefaultModel   string `env:"DEFAULT_MODEL"          envDefault:"llama-3.1-8b-instant"`
	ChunkSize      int    `env:"CHUNK_SIZE"             envDefault:"4000"`
	ChunkOverlap   int    `env:"CHUNK_OVERLAP"          envDefault:"200"`
	ChunkCombined  bool   `env:"SUMMARY_CHUNK_COMBINED" envDefault:"false"`
	CacheSize      int    `env:"SUMMARY_CACHE_SIZE"     envDefault:"128"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES"       envDefault:"20971520"`

	CacheTTL         time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"1h"`
	HistoryRetention time.Duration `env:"HISTORY_RETENTION" envDefault:"720h"`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT"     envDefault:"30s"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// APIKey prefers GROQ_API_KEY over the secrets file.
func (c Config) APIKey() string {
	if key := strings.TrimSpace(c.GroqAPIKey); key != "" {
		return key
	}

	return strings.TrimSpace(c.GroqAPIKeyFile)
}

func (c Config) Validate() error {
	var errs []error

	if c.APIKey() == "" {
		errs = append(errs, ErrMissingAPIKey)
	}

	if c.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize))
	}

	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap))
	}

	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}

	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout))
	}

	catalog, err := domain.LoadCatalog()
	if err != nil {
		errs = append(errs, fmt.Errorf("load model catalog: %w", err))
	} else if _, err := catalog.Lookup(c.DefaultModel); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_MODEL: %w", err))
	}

	return errors.Join(errs...)
}
