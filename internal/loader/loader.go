// Package loader turns a source descriptor into an ordered sequence of text
// documents.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"docsummarizer/internal/domain"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultMaxBodyBytes = 10 << 20
)

// Strategy loads one kind of source.
type Strategy interface {
	Load(ctx context.Context, src domain.Source) ([]domain.Document, error)
}

type Config struct {
	FetchTimeout time.Duration
	MaxBodyBytes int64
}

type Loader struct {
	log        *slog.Logger
	strategies map[domain.SourceKind]Strategy
}

func New(log *slog.Logger, cfg Config) *Loader {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	client := &http.Client{Timeout: cfg.FetchTimeout}
	fetcher := newPageFetcher(client, cfg.MaxBodyBytes)

	return NewWithStrategies(log, map[domain.SourceKind]Strategy{
		domain.SourcePDF:     NewPDFLoader(log),
		domain.SourceWebsite: NewWebsiteLoader(log, fetcher, NewLinguaDetector()),
		domain.SourceYouTube: NewYouTubeLoader(
			log,
			NewWatchPageFetcher(client, ""),
			NewInnertubeFetcher(client, ""),
		),
		domain.SourceFeed: NewFeedLoader(log, fetcher),
	})
}

func NewWithStrategies(
	log *slog.Logger,
	strategies map[domain.SourceKind]Strategy,
) *Loader {
	return &Loader{log: log, strategies: strategies}
}

// Load dispatches on the descriptor kind. Failures are *domain.LoadError.
func (l *Loader) Load(
	ctx context.Context,
	src domain.Source,
) ([]domain.Document, error) {
	strategy, ok := l.strategies[src.Kind]
	if !ok {
		return nil, domain.NewLoadError(
			domain.LoadUnsupported,
			src.Kind,
			fmt.Errorf("no loader for source kind %q", src.Kind),
		)
	}

	start := time.Now()

	docs, err := strategy.Load(ctx, src)
	if err != nil {
		l.log.WarnContext(ctx, "Failed to load source",
			"error", err,
			"kind", src.Kind,
			"reference", src.Reference())

		return nil, err
	}

	l.log.InfoContext(ctx, "Source is loaded",
		"kind", src.Kind,
		"reference", src.Reference(),
		"documents", len(docs),
		"characters", domain.TotalLength(docs),
		"elapsed", time.Since(start))

	return docs, nil
}
