package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"docsummarizer/internal/domain"
)

func TestLoadErrorMatchesKindSentinel(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("load documents: %w", domain.NewLoadError(domain.LoadNoCaptions, domain.SourceYouTube, cause))

	if !errors.Is(err, domain.ErrNoCaptions) {
		t.Fatalf("expected ErrNoCaptions match")
	}
	if errors.Is(err, domain.ErrMalformed) {
		t.Fatalf("did not expect ErrMalformed match")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be unwrapped")
	}

	kind, ok := domain.LoadErrorKindOf(err)
	if !ok || kind != domain.LoadNoCaptions {
		t.Fatalf("unexpected kind: %q %v", kind, ok)
	}
}

func TestSummarizationErrorCarriesMessage(t *testing.T) {
	err := domain.NewServiceFailure(errors.New("rate limited"))

	if !errors.Is(err, domain.ErrServiceFailure) {
		t.Fatalf("expected ErrServiceFailure match")
	}
	if got := err.Error(); got != "summarize: completion service failure: rate limited" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestParseSourceKind(t *testing.T) {
	kind, err := domain.ParseSourceKind(" YouTube ")
	if err != nil || kind != domain.SourceYouTube {
		t.Fatalf("unexpected result: %q %v", kind, err)
	}

	if _, err = domain.ParseSourceKind("docx"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
