package service_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/service"
	"docsummarizer/internal/summarizer"
)

type stubLoader struct {
	docs []domain.Document
	err  error
}

func (l *stubLoader) Load(context.Context, domain.Source) ([]domain.Document, error) {
	return l.docs, l.err
}

type stubSummarizer struct {
	mu     sync.Mutex
	models []domain.ModelID
	result summarizer.Result
	err    error
}

func (s *stubSummarizer) Summarize(
	_ context.Context,
	_ []domain.Document,
	model domain.ModelID,
) (summarizer.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.models = append(s.models, model)

	return s.result, s.err
}

type memoryHistory struct {
	mu        sync.Mutex
	summaries []domain.SummaryResult
	insertErr error
}

func (h *memoryHistory) InsertSummary(_ context.Context, s *domain.SummaryResult) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.insertErr != nil {
		return h.insertErr
	}

	h.summaries = append(h.summaries, *s)

	return nil
}

func (h *memoryHistory) ListSummaries(_ context.Context, limit int) ([]domain.SummaryResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.summaries[:min(limit, len(h.summaries))], nil
}

func (h *memoryHistory) GetSummary(_ context.Context, id string) (*domain.SummaryResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.summaries {
		if s.ID == id {
			return &s, nil
		}
	}

	return nil, errors.New("not found")
}

func newTestService(
	t *testing.T,
	l service.DocumentLoader,
	s summarizer.Summarizer,
	h service.HistoryStore,
) *service.Service {
	t.Helper()

	catalog, err := domain.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	return service.New(slog.New(slog.DiscardHandler), catalog, l, s, h)
}

func TestServiceSummarize(t *testing.T) {
	loader := &stubLoader{docs: []domain.Document{
		domain.NewDocument("one", nil),
		domain.NewDocument("two", nil),
	}}
	sum := &stubSummarizer{result: summarizer.Result{Text: "It works. Really!"}}
	history := &memoryHistory{}

	svc := newTestService(t, loader, sum, history)

	res, err := svc.Summarize(context.Background(), service.Request{
		Source: domain.NewPDFSource("paper.pdf", []byte("%PDF")),
		Model:  domain.ModelGPTOSS120B,
	})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if res.ID == "" || res.Text != "It works. Really!" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.InputType != "pdf" || res.Source != "paper.pdf" || res.DocumentCount != 2 {
		t.Fatalf("unexpected result metadata: %+v", res)
	}
	if res.ModelID != domain.ModelGPTOSS120B || sum.models[0] != domain.ModelGPTOSS120B {
		t.Fatalf("model was not passed through: %+v", res)
	}
	if res.Analytics().SentenceCount != 2 {
		t.Fatalf("unexpected analytics: %+v", res.Analytics())
	}

	if len(history.summaries) != 1 || history.summaries[0].ID != res.ID {
		t.Fatalf("expected summary to be recorded")
	}

	got, err := svc.Get(context.Background(), res.ID)
	if err != nil || got.Text != res.Text {
		t.Fatalf("Get returned %+v, %v", got, err)
	}
}

func TestServiceUsesDefaultModel(t *testing.T) {
	sum := &stubSummarizer{result: summarizer.Result{Text: "ok"}}
	svc := newTestService(t, &stubLoader{docs: []domain.Document{domain.NewDocument("x", nil)}}, sum, nil)

	res, err := svc.Summarize(context.Background(), service.Request{
		Source: domain.NewWebsiteSource("https://example.com"),
	})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if res.ModelID != domain.DefaultModelID {
		t.Fatalf("expected default model, got %s", res.ModelID)
	}
}

func TestServiceHonorsConfiguredDefaultModel(t *testing.T) {
	catalog, err := domain.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	sum := &stubSummarizer{result: summarizer.Result{Text: "ok"}}
	svc := service.New(
		slog.New(slog.DiscardHandler),
		catalog,
		&stubLoader{docs: []domain.Document{domain.NewDocument("x", nil)}},
		sum,
		nil,
		service.WithDefaultModel(domain.ModelLlama4Scout),
	)

	res, err := svc.Summarize(context.Background(), service.Request{
		Source: domain.NewWebsiteSource("https://example.com"),
	})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if res.ModelID != domain.ModelLlama4Scout {
		t.Fatalf("expected configured default model, got %s", res.ModelID)
	}
}

func TestServiceRejectsUnknownModel(t *testing.T) {
	sum := &stubSummarizer{}
	svc := newTestService(t, &stubLoader{}, sum, nil)

	_, err := svc.Summarize(context.Background(), service.Request{
		Source: domain.NewWebsiteSource("https://example.com"),
		Model:  "gpt-unknown",
	})
	if !errors.Is(err, domain.ErrUnknownModel) {
		t.Fatalf("expected unknown model error, got %v", err)
	}

	if len(sum.models) != 0 {
		t.Fatalf("expected summarizer not to be called")
	}
}

func TestServicePropagatesTypedErrors(t *testing.T) {
	loadErr := domain.NewLoadError(domain.LoadNoCaptions, domain.SourceYouTube, errors.New("none"))
	svc := newTestService(t, &stubLoader{err: loadErr}, &stubSummarizer{}, nil)

	_, err := svc.Summarize(context.Background(), service.Request{Source: domain.NewYouTubeSource("https://youtu.be/x")})

	var le *domain.LoadError
	if !errors.As(err, &le) || le.Kind != domain.LoadNoCaptions {
		t.Fatalf("expected load error, got %v", err)
	}

	sumErr := domain.NewServiceFailure(errors.New("rate limited"))
	svc = newTestService(t,
		&stubLoader{docs: []domain.Document{domain.NewDocument("x", nil)}},
		&stubSummarizer{err: sumErr},
		nil)

	_, err = svc.Summarize(context.Background(), service.Request{Source: domain.NewWebsiteSource("https://example.com")})
	if !errors.Is(err, domain.ErrServiceFailure) {
		t.Fatalf("expected service failure, got %v", err)
	}
}

func TestServiceHistoryFailureIsNotFatal(t *testing.T) {
	history := &memoryHistory{insertErr: errors.New("disk full")}
	svc := newTestService(t,
		&stubLoader{docs: []domain.Document{domain.NewDocument("x", nil)}},
		&stubSummarizer{result: summarizer.Result{Text: "ok"}},
		history)

	res, err := svc.Summarize(context.Background(), service.Request{Source: domain.NewWebsiteSource("https://example.com")})
	if err != nil {
		t.Fatalf("expected history failure to be ignored, got %v", err)
	}
	if res.Text != "ok" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestServiceHistoryDisabled(t *testing.T) {
	svc := newTestService(t, &stubLoader{}, &stubSummarizer{}, nil)

	if _, err := svc.History(context.Background(), 10); !errors.Is(err, service.ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "x"); !errors.Is(err, service.ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled, got %v", err)
	}
}

func TestServiceRequestsAreIndependent(t *testing.T) {
	svc := newTestService(t,
		&stubLoader{docs: []domain.Document{domain.NewDocument("x", nil)}},
		&stubSummarizer{result: summarizer.Result{Text: "ok"}},
		nil)

	var wg sync.WaitGroup
	ids := make([]string, 8)

	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := svc.Summarize(context.Background(), service.Request{
				Source: domain.NewWebsiteSource("https://example.com"),
			})
			if err != nil {
				t.Errorf("Summarize returned error: %v", err)
				return
			}
			ids[i] = res.ID
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = struct{}{}
	}
}
