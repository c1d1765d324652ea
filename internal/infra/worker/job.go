package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"ai-pulse/internal/domain/entity"
	"ai-pulse/internal/usecase/newsletter"
)

// Refresher regenerates the newsletter and replaces the cached copy on success.
type Refresher interface {
	Refresh(ctx context.Context) (*entity.Newsletter, error)
}

// RefreshJob runs one bounded refresh and records its outcome.
type RefreshJob struct {
	refresher Refresher
	timeout   time.Duration
	metrics   *WorkerMetrics
	logger    *slog.Logger
}

// NewRefreshJob creates a job. metrics may be nil.
func NewRefreshJob(r Refresher, timeout time.Duration, metrics *WorkerMetrics, logger *slog.Logger) *RefreshJob {
	return &RefreshJob{refresher: r, timeout: timeout, metrics: metrics, logger: logger}
}

// Run refreshes the newsletter within the job timeout. A failed refresh leaves the
// previously cached newsletter in place.
func (j *RefreshJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	j.record(func(m *WorkerMetrics) { m.RecordJobRun("started") })
	j.logger.Info("refresh job started", slog.Duration("timeout", j.timeout))

	n, err := j.refresher.Refresh(ctx)
	duration := time.Since(start)
	j.record(func(m *WorkerMetrics) { m.RecordJobDuration(duration.Seconds()) })

	if err != nil {
		j.record(func(m *WorkerMetrics) { m.RecordJobRun("failure") })
		j.logger.Error("refresh job failed",
			slog.String("kind", newsletter.KindLabel(err)),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return fmt.Errorf("refresh newsletter: %w", err)
	}

	j.record(func(m *WorkerMetrics) {
		m.RecordJobRun("success")
		m.RecordSuccess(n.ItemCount())
	})
	j.logger.Info("refresh job completed",
		slog.Int("sections", len(n.Sections)),
		slog.Int("items", n.ItemCount()),
		slog.Duration("duration", duration))
	return nil
}

func (j *RefreshJob) record(f func(*WorkerMetrics)) {
	if j.metrics != nil {
		f(j.metrics)
	}
}

// Scheduler runs a RefreshJob on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers job on cfg's schedule. ctx is the parent of every run;
// cancelling it aborts a run in progress.
func NewScheduler(ctx context.Context, cfg *WorkerConfig, job *RefreshJob, logger *slog.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(cfg.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(cfg.Schedule, func() { _ = job.Run(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule refresh job: %w", err)
	}
	return &Scheduler{cron: c}, nil
}

// Start starts the scheduler in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for a running job to finish or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Next returns the time of the next scheduled run, or zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
