package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docsummarizer/internal/config"
	"docsummarizer/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"GROQ_API_KEY", "GROQ_API_KEY_FILE", "GROQ_BASE_URL", "HTTP_ADDR", "DB_PATH",
		"TELEGRAM_TOKEN", "ALLOWED_USERS", "DEFAULT_MODEL", "CHUNK_SIZE", "CHUNK_OVERLAP",
		"SUMMARY_CHUNK_COMBINED", "SUMMARY_CACHE_SIZE", "SUMMARY_CACHE_TTL",
		"HISTORY_RETENTION", "FETCH_TIMEOUT", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", " gsk_test ")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.APIKey() != "gsk_test" {
		t.Fatalf("unexpected api key: %q", cfg.APIKey())
	}
	if cfg.ChunkSize != 4000 || cfg.ChunkOverlap != 200 || cfg.ChunkCombined {
		t.Fatalf("unexpected chunk settings: %+v", cfg)
	}
	if cfg.DefaultModel != string(domain.DefaultModelID) {
		t.Fatalf("unexpected default model: %q", cfg.DefaultModel)
	}
	if cfg.CacheTTL != time.Hour || cfg.HistoryRetention != 720*time.Hour {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.HTTPAddr != ":8080" || cfg.DBPath != "db.sqlite" {
		t.Fatalf("unexpected addresses: %+v", cfg)
	}
}

func TestLoadReadsKeyFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "groq_key")
	if err := os.WriteFile(path, []byte("gsk_from_file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	t.Setenv("GROQ_API_KEY_FILE", path)
	t.Setenv("ALLOWED_USERS", "1,2,3")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.APIKey() != "gsk_from_file" {
		t.Fatalf("unexpected api key: %q", cfg.APIKey())
	}
	if len(cfg.AllowedUsers) != 3 || cfg.AllowedUsers[2] != 3 {
		t.Fatalf("unexpected allowed users: %v", cfg.AllowedUsers)
	}
}

func TestLoadFailsWithoutKey(t *testing.T) {
	clearEnv(t)

	_, err := config.Load()
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("DEFAULT_MODEL", "gpt-unknown")

	_, err := config.Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	if !strings.Contains(err.Error(), "CHUNK_OVERLAP") || !errors.Is(err, domain.ErrUnknownModel) {
		t.Fatalf("expected overlap and model problems, got %v", err)
	}
}
