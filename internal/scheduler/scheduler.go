package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	HourlyPruneSpec       = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	pruneTimeout          = 5 * time.Minute
)

// HistoryPruner deletes history recorded before the cutoff.
type HistoryPruner interface {
	PruneSummaries(ctx context.Context, before time.Time) (int64, error)
}

type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	pruner    HistoryPruner
	retention time.Duration
	now       func() time.Time
	log       *slog.Logger
}

func New(
	ctx context.Context,
	pruner HistoryPruner,
	retention time.Duration,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
		log:       log,
	}
}

// Start registers the hourly job. A non-positive retention keeps history
// forever and schedules nothing.
func (s *Scheduler) Start() error {
	if s.retention <= 0 {
		return nil
	}

	if _, err := s.cron.AddFunc(HourlyPruneSpec, s.pruneHistory); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pruneHistory() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	cutoff := s.now().UTC().Add(-s.retention)

	n, err := s.pruner.PruneSummaries(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prune history",
			"error", err,
			"cutoff", cutoff)

		return
	}

	s.log.InfoContext(ctx, "History is pruned",
		"cutoff", cutoff,
		"deleted", n)
}
