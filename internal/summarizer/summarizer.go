package summarizer

import (
	"context"

	"docsummarizer/internal/domain"
)

// Completer sends one prompt to a hosted model and returns its completion.
type Completer interface {
	Complete(ctx context.Context, model domain.ModelID, prompt string) (string, error)
}

// Result is the outcome of one summarization run.
type Result struct {
	// Text is the final summary.
	Text string
	// ChunkCount is the number of map passes, zero for a single pass.
	ChunkCount int
}

// Summarizer produces a single summary for an ordered document sequence.
type Summarizer interface {
	Summarize(ctx context.Context, docs []domain.Document, model domain.ModelID) (Result, error)
}
