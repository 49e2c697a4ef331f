package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docsummarizer/internal/domain"
)

func TestSummarizeRequiresExactlyOneSource(t *testing.T) {
	tests := [][]string{
		{"docsummarizer", "summarize"},
		{"docsummarizer", "summarize", "--url", "https://a.example", "--feed", "https://b.example/rss"},
	}

	for _, args := range tests {
		app := newApp(slog.New(slog.DiscardHandler))
		app.Writer = &bytes.Buffer{}

		if err := app.Run(args); !errors.Is(err, errNoSource) {
			t.Fatalf("%v: expected errNoSource, got %v", args, err)
		}
	}
}

func TestSummarizeReportsUnreadablePDF(t *testing.T) {
	app := newApp(slog.New(slog.DiscardHandler))
	app.Writer = &bytes.Buffer{}

	missing := filepath.Join(t.TempDir(), "missing.pdf")

	err := app.Run([]string{"docsummarizer", "summarize", "--pdf", missing})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}

func TestModelsCommandListsCatalog(t *testing.T) {
	var out bytes.Buffer

	app := newApp(slog.New(slog.DiscardHandler))
	app.Writer = &out

	if err := app.Run([]string{"docsummarizer", "models"}); err != nil {
		t.Fatalf("models command returned error: %v", err)
	}

	catalog := domain.MustLoadCatalog()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(catalog.Models()) {
		t.Fatalf("expected %d lines, got %d", len(catalog.Models()), len(lines))
	}
	if !strings.Contains(out.String(), string(domain.DefaultModelID)) {
		t.Fatalf("expected the default model to be listed")
	}
}
