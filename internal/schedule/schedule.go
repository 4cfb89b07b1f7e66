package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/go-scripts/scrape/internal/logging"
)

// Job is one scheduled unit of work. Its context carries a logger tagged
// with the job name, see logging.From.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron expressions until its context is cancelled. A job
// still running when its next tick fires is skipped for that tick.
type Scheduler struct {
	cron   *cron.Cron
	logger *log.Logger

	mu  sync.Mutex
	ctx context.Context
	wg  sync.WaitGroup
}

func New(logger *log.Logger) *Scheduler {
	logger = logger.WithPrefix("schedule")
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    context.Background(),
	}
}

// Add registers job under expr, a standard five field cron expression or a
// descriptor such as "@hourly" or "@every 6h".
func (s *Scheduler) Add(expr, name string, job Job) error {
	_, err := s.cron.AddFunc(expr, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	s.logger.Info("job scheduled", "job", name, "expr", expr)
	return nil
}

// Next reports when the earliest job fires next
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// Run starts the scheduler and blocks until ctx is done, then waits for the
// running jobs to return. When runNow is set every job also runs once
// immediately.
func (s *Scheduler) Run(ctx context.Context, runNow bool) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	if runNow {
		for _, e := range s.cron.Entries() {
			s.wg.Add(1)
			go func(j cron.Job) {
				defer s.wg.Done()
				j.Run()
			}(e.WrappedJob)
		}
	}
	s.logger.Info("scheduler started", "next", s.Next().Format(time.DateTime))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	logger := s.logger.With("job", name)
	ctx = logging.Into(ctx, logger)

	start := time.Now()
	logger.Info("job started")
	if err := job(ctx); err != nil {
		logger.Error("job failed", "err", err, "elapsed", time.Since(start).Round(time.Millisecond))
		return
	}
	logger.Info("job finished", "elapsed", time.Since(start).Round(time.Millisecond))
}

// cronLogger forwards the cron library's messages to the structured logger
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"err", err}, keysAndValues...)...)
}
