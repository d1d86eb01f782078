// Package scheduler runs the daily note job on a gocron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/mrwolf/daybook/internal/pipeline"
	"go.uber.org/zap"
)

const jobName = "daily-note"

// Runner builds and stores the note for the day before now.
type Runner interface {
	Run(ctx context.Context, now time.Time) (*pipeline.Result, error)
}

// Config holds scheduler configuration
type Config struct {
	Location *time.Location
	Hour     uint
	Minute   uint
	// Timeout bounds a single run. Defaults to 5 minutes.
	Timeout time.Duration
	// Clock replaces the wall clock, for tests.
	Clock gocron.SchedulerOption
}

// Scheduler manages the daily job
type Scheduler struct {
	scheduler gocron.Scheduler
	job       gocron.Job
	runner    Runner
	cfg       Config
	logger    *zap.Logger
}

// New creates a new scheduler
func New(runner Runner, cfg Config, logger *zap.Logger) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []gocron.SchedulerOption{gocron.WithLocation(cfg.Location)}
	if cfg.Clock != nil {
		opts = append(opts, cfg.Clock)
	}
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler: s,
		runner:    runner,
		cfg:       cfg,
		logger:    logger.Named("scheduler"),
	}, nil
}

// Start registers the daily job and starts the scheduler
func (s *Scheduler) Start() error {
	job, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(s.cfg.Hour, s.cfg.Minute, 0))),
		gocron.NewTask(s.runDaily),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	s.job = job

	s.scheduler.Start()
	s.logger.Info("scheduler started",
		zap.String("job", jobName),
		zap.Uint("hour", s.cfg.Hour),
		zap.Uint("minute", s.cfg.Minute),
		zap.String("timezone", s.cfg.Location.String()))
	return nil
}

// NextRun reports when the daily job fires next.
func (s *Scheduler) NextRun() (time.Time, error) {
	if s.job == nil {
		return time.Time{}, nil
	}
	return s.job.NextRun()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) runDaily() {
	if _, err := s.RunNow(context.Background()); err != nil {
		s.logger.Error("daily note failed", zap.Error(err))
	}
}

// RunNow runs the job immediately, bounded by the configured timeout.
func (s *Scheduler) RunNow(ctx context.Context) (*pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	res, err := s.runner.Run(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("daily note done",
		zap.String("run_id", res.RunID),
		zap.String("note_id", res.NoteID),
		zap.Duration("took", time.Since(start)))
	return res, nil
}
