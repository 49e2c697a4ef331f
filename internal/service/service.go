// Package service runs one summarization interaction end to end: load the
// source, summarize, record history and name the artifact.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/summarizer"
)

var ErrHistoryDisabled = errors.New("history is disabled")

type DocumentLoader interface {
	Load(ctx context.Context, src domain.Source) ([]domain.Document, error)
}

type HistoryStore interface {
	InsertSummary(ctx context.Context, s *domain.SummaryResult) error
	ListSummaries(ctx context.Context, limit int) ([]domain.SummaryResult, error)
	GetSummary(ctx context.Context, id string) (*domain.SummaryResult, error)
}

type Request struct {
	Source domain.Source
	Model  domain.ModelID
}

// Interaction is the immutable context of one request. Nothing in it is
// shared between requests.
type Interaction struct {
	ID        string
	StartedAt time.Time
	Model     domain.ModelConfig
	Source    domain.Source
}

type Service struct {
	log          *slog.Logger
	catalog      *domain.Catalog
	loader       DocumentLoader
	summarizer   summarizer.Summarizer
	history      HistoryStore
	defaultModel domain.ModelID
	now          func() time.Time
}

type Option func(*Service)

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(id domain.ModelID) Option {
	return func(s *Service) {
		s.defaultModel = id
	}
}

// New builds a service. history may be nil, in which case results are not
// recorded.
func New(
	log *slog.Logger,
	catalog *domain.Catalog,
	loader DocumentLoader,
	s summarizer.Summarizer,
	history HistoryStore,
	opts ...Option,
) *Service {
	svc := &Service{
		log:          log,
		catalog:      catalog,
		loader:       loader,
		summarizer:   s,
		history:      history,
		defaultModel: domain.DefaultModelID,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

func (s *Service) DefaultModel() domain.ModelID {
	return s.defaultModel
}

func (s *Service) Models() []domain.ModelConfig {
	return s.catalog.Models()
}

func (s *Service) Model(id domain.ModelID) (domain.ModelConfig, error) {
	if id == "" {
		id = s.defaultModel
	}

	return s.catalog.Resolve(string(id))
}

func (s *Service) begin(req Request) (Interaction, error) {
	model, err := s.Model(req.Model)
	if err != nil {
		return Interaction{}, fmt.Errorf("resolve model: %w", err)
	}

	return Interaction{
		ID:        uuid.NewString(),
		StartedAt: s.now().UTC(),
		Model:     model,
		Source:    req.Source,
	}, nil
}

// Summarize returns a *domain.LoadError when the source cannot be turned into
// text and a *domain.SummarizationError when the completion service fails.
func (s *Service) Summarize(ctx context.Context, req Request) (*domain.SummaryResult, error) {
	in, err := s.begin(req)
	if err != nil {
		return nil, err
	}

	log := s.log.With(
		"requestID", in.ID,
		"kind", in.Source.Kind,
		"model", in.Model.ID)

	docs, err := s.loader.Load(ctx, in.Source)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}

	res, err := s.summarizer.Summarize(ctx, docs, in.Model.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to summarize",
			"error", err,
			"documents", len(docs))

		return nil, fmt.Errorf("summarize: %w", err)
	}

	result := &domain.SummaryResult{
		ID:            in.ID,
		Text:          res.Text,
		InputType:     in.Source.InputType(),
		ModelID:       in.Model.ID,
		Source:        in.Source.Reference(),
		DocumentCount: len(docs),
		ChunkCount:    res.ChunkCount,
		CreatedAt:     in.StartedAt,
	}

	if s.history != nil {
		if err := s.history.InsertSummary(ctx, result); err != nil {
			log.WarnContext(ctx, "Failed to record summary history",
				"error", err)
		}
	}

	log.InfoContext(ctx, "Summary is ready",
		"documents", result.DocumentCount,
		"chunks", result.ChunkCount,
		"characters", len([]rune(result.Text)),
		"elapsed", s.now().Sub(in.StartedAt))

	return result, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]domain.SummaryResult, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}

	summaries, err := s.history.ListSummaries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}

	return summaries, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.SummaryResult, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}

	summary, err := s.history.GetSummary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}

	return summary, nil
}
