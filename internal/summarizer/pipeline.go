package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docsummarizer/internal/chunker"
	"docsummarizer/internal/domain"
)

// Pipeline decides between a single completion pass and map-reduce over
// chunks, then drives the completer with a bounded retry budget.
type Pipeline struct {
	log              *slog.Logger
	completer        Completer
	splitter         *chunker.Splitter
	retry            RetryConfig
	combineThreshold bool
}

type Option func(*Pipeline)

func WithSplitter(s *chunker.Splitter) Option {
	return func(p *Pipeline) {
		p.splitter = s
	}
}

func WithRetryConfig(rc RetryConfig) Option {
	return func(p *Pipeline) {
		p.retry = rc
	}
}

// WithCombineThreshold applies the size check to the combined length of
// multi-document input instead of only to a lone document.
func WithCombineThreshold(enabled bool) Option {
	return func(p *Pipeline) {
		p.combineThreshold = enabled
	}
}

func NewPipeline(log *slog.Logger, completer Completer, opts ...Option) *Pipeline {
	p := &Pipeline{
		log:       log,
		completer: completer,
		splitter:  chunker.Default(),
		retry:     DefaultRetryConfig,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Pipeline) Summarize(
	ctx context.Context,
	docs []domain.Document,
	model domain.ModelID,
) (Result, error) {
	if len(docs) == 0 {
		return Result{}, errors.New("no documents to summarize")
	}

	if target, ok := p.chunkTarget(docs); ok {
		chunks := p.splitter.Split(target)
		if len(chunks) > 1 {
			return p.mapReduce(ctx, chunks, model)
		}
	}

	text, err := p.complete(ctx, model, ConciseSummaryPrompt(JoinContents(docs)))
	if err != nil {
		return Result{}, err
	}

	return Result{Text: text}, nil
}

// chunkTarget returns the document to split when the input is too large for a
// single pass.
func (p *Pipeline) chunkTarget(docs []domain.Document) (domain.Document, bool) {
	if len(docs) == 1 {
		return docs[0], domain.TotalLength(docs) > p.splitter.MaxSize()
	}

	if !p.combineThreshold {
		return domain.Document{}, false
	}

	combined := domain.NewDocument(JoinContents(docs), docs[0].Clone().Metadata)

	return combined, domain.TotalLength([]domain.Document{combined}) > p.splitter.MaxSize()
}

func (p *Pipeline) mapReduce(
	ctx context.Context,
	chunks []domain.Document,
	model domain.ModelID,
) (Result, error) {
	p.log.InfoContext(ctx, "Summarizing in chunks",
		"model", model,
		"chunks", len(chunks))

	partials := make([]domain.Document, 0, len(chunks))
	for i, chunk := range chunks {
		text, err := p.complete(ctx, model, ConciseSummaryPrompt(chunk.Content))
		if err != nil {
			return Result{}, fmt.Errorf("summarize chunk %d: %w", i+1, err)
		}

		partials = append(partials, domain.NewDocument(text, nil))
	}

	text, err := p.complete(ctx, model, ConciseSummaryPrompt(JoinContents(partials)))
	if err != nil {
		return Result{}, fmt.Errorf("combine summaries: %w", err)
	}

	return Result{Text: text, ChunkCount: len(chunks)}, nil
}

func (p *Pipeline) complete(
	ctx context.Context,
	model domain.ModelID,
	prompt string,
) (string, error) {
	text, err := RetryDo(ctx, p.log, p.retry, func() (string, error) {
		return p.completer.Complete(ctx, model, prompt)
	})
	if err != nil {
		return "", domain.NewServiceFailure(err)
	}

	return text, nil
}
