// Package jobs runs periodic background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/booking-portal/internal/application"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Reconciler produces a slot reconciliation report.
type Reconciler interface {
	Run(ctx context.Context) (application.ReconciliationReport, error)
}

// ReportFunc receives every report the scheduled job produces.
type ReportFunc func(application.ReconciliationReport)

// Scheduler owns the cron instance for background jobs.
type Scheduler struct {
	sched   *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
	enabled bool
}

// Options configure the reconciliation job.
type Options struct {
	// Schedule is a cron spec or descriptor such as "@every 1h". Empty disables the job.
	Schedule string
	Location *time.Location
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewScheduler registers the reconciliation job. It does not start the cron loop.
func NewScheduler(reconciler Reconciler, onReport ReportFunc, opts Options) (*Scheduler, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		sched:   cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		logger:  logger.With("component", "jobs"),
		timeout: opts.Timeout,
	}
	if opts.Schedule == "" {
		return s, nil
	}
	if reconciler == nil {
		return nil, fmt.Errorf("reconciler is required when a schedule is set")
	}

	_, err := s.sched.AddFunc(opts.Schedule, func() {
		s.reconcile(reconciler, onReport)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reconciliation %q: %w", opts.Schedule, err)
	}
	s.enabled = true
	return s, nil
}

// Enabled reports whether any job is registered.
func (s *Scheduler) Enabled() bool {
	return s.enabled
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	if !s.enabled {
		s.logger.Info("reconciliation job disabled")
		return
	}
	s.sched.Start()
}

// Stop halts the scheduler and waits for running jobs, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.sched.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(stopCtx)
}

func (s *Scheduler) reconcile(reconciler Reconciler, onReport ReportFunc) {
	defer func() {
		if err := recover(); err != nil {
			s.logger.Error("reconciliation job panicked", "panic", err)
		}
	}()

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := reconciler.Run(ctx)
	if err != nil {
		s.logger.Error("reconciliation job failed", "error", err, "error_kind", application.ErrorKind(err))
		return
	}
	if onReport != nil {
		onReport(report)
	}
}
