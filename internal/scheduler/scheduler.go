package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/you/go-ramadan-transfers/internal/logger"
)

// Job is background work such as the Ramadan calendar warmup. ctx is
// cancelled when the scheduler stops.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on cron schedules. A run still going when its next
// tick comes is skipped, and a panicking job is logged instead of killing
// the process.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger
}

func New(log zerolog.Logger) *Scheduler {
	log = logger.Component(log, "scheduler")
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job on a five-field cron expression or a descriptor such
// as "@daily" or "@every 6h".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	id, err := s.cron.AddFunc(schedule, func() { _ = s.run(job) })
	if err != nil {
		return err
	}
	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Int("entry", int(id)).
		Msg("Job registered")
	return nil
}

// RunNow executes job once, outside its schedule, under the scheduler's ctx.
func (s *Scheduler) RunNow(job Job) error {
	return s.run(job)
}

func (s *Scheduler) run(job Job) error {
	start := time.Now()
	err := job.Run(s.ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("job", job.Name()).Dur("took", time.Since(start)).Msg("Job failed")
		return err
	}
	s.log.Debug().Str("job", job.Name()).Dur("took", time.Since(start)).Msg("Job completed")
	return nil
}

// cronLogger sends robfig/cron's own messages to zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
