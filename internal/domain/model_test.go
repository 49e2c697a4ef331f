package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"docsummarizer/internal/domain"
)

func TestLoadCatalog(t *testing.T) {
	c, err := domain.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	models := c.Models()
	if len(models) != 8 {
		t.Fatalf("expected 8 models, got %d", len(models))
	}

	if models[0].ID != domain.DefaultModelID {
		t.Fatalf("expected default model first, got %q", models[0].ID)
	}

	if got := len(c.ByCategory(domain.CategoryProduction)); got != 4 {
		t.Fatalf("expected 4 production models, got %d", got)
	}

	if got := len(c.ByCategory(domain.CategoryPreview)); got != 4 {
		t.Fatalf("expected 4 preview models, got %d", got)
	}
}

func TestCatalogLookup(t *testing.T) {
	c := domain.MustLoadCatalog()

	m, err := c.Lookup(" openai/gpt-oss-120b ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if m.Label() != "gpt-oss-120b" {
		t.Fatalf("unexpected label: %q", m.Label())
	}
	if m.FileSafeID() != "openai_gpt-oss-120b" {
		t.Fatalf("unexpected file safe id: %q", m.FileSafeID())
	}

	if _, err = c.Lookup("gpt-4"); !errors.Is(err, domain.ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}

	def, err := c.Resolve("")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if def.ID != domain.DefaultModelID {
		t.Fatalf("unexpected default model: %q", def.ID)
	}
}

func TestParseCatalogRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown id",
			yaml: "models:\n  - id: gpt-4\n    category: production\n",
			want: "unknown model",
		},
		{
			name: "bad category",
			yaml: "models:\n  - id: qwen/qwen3-32b\n    category: beta\n",
			want: "invalid category",
		},
		{
			name: "duplicate",
			yaml: "models:\n  - id: qwen/qwen3-32b\n    category: preview\n  - id: qwen/qwen3-32b\n    category: preview\n",
			want: "duplicate model",
		},
		{
			name: "missing entries",
			yaml: "models: []\n",
			want: "missing from catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseCatalog([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSummaryFileName(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	model := domain.ModelConfig{ID: domain.ModelLlama4Scout}

	got := domain.SummaryFileName("youtube", model, at)
	want := "youtube_meta-llama_llama-4-scout-17b-16e-instruct_20250304_050607.txt"

	if got != want {
		t.Fatalf("unexpected file name: got %q want %q", got, want)
	}

	r := &domain.SummaryResult{InputType: "pdf", ModelID: domain.ModelLlama31_8B, CreatedAt: at}
	if got = r.FileName(); got != "pdf_llama-3.1-8b-instant_20250304_050607.txt" {
		t.Fatalf("unexpected result file name: %q", got)
	}
}
