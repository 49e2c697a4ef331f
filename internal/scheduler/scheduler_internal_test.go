package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

type stubPruner struct {
	cutoffs []time.Time
	err     error
}

func (p *stubPruner) PruneSummaries(_ context.Context, before time.Time) (int64, error) {
	p.cutoffs = append(p.cutoffs, before)
	return 3, p.err
}

func TestPruneHistoryUsesRetention(t *testing.T) {
	pruner := &stubPruner{}
	s := New(context.Background(), pruner, 24*time.Hour, slog.New(slog.DiscardHandler))

	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.pruneHistory()

	if len(pruner.cutoffs) != 1 {
		t.Fatalf("expected one prune call, got %d", len(pruner.cutoffs))
	}
	if !pruner.cutoffs[0].Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected cutoff: %v", pruner.cutoffs[0])
	}

	pruner.err = errors.New("locked")
	s.pruneHistory()

	if len(pruner.cutoffs) != 2 {
		t.Fatalf("expected failure to be logged, not retried; got %d calls", len(pruner.cutoffs))
	}
}

func TestPruneHistorySkipsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pruner := &stubPruner{}
	s := New(ctx, pruner, time.Hour, slog.New(slog.DiscardHandler))

	s.pruneHistory()

	if len(pruner.cutoffs) != 0 {
		t.Fatalf("expected no prune after cancellation")
	}
}

func TestStartWithoutRetentionSchedulesNothing(t *testing.T) {
	s := New(context.Background(), &stubPruner{}, 0, slog.New(slog.DiscardHandler))

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	if len(s.cron.Entries()) != 0 {
		t.Fatalf("expected no cron entries, got %d", len(s.cron.Entries()))
	}
}

func TestStartSchedulesHourlyJob(t *testing.T) {
	s := New(context.Background(), &stubPruner{}, time.Hour, slog.New(slog.DiscardHandler))

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop()

	if len(s.cron.Entries()) != 1 {
		t.Fatalf("expected one cron entry, got %d", len(s.cron.Entries()))
	}
}
