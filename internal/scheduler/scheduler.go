// Package scheduler wraps robfig/cron to drive the periodic pipeline jobs:
// price sweep, deals refresh, free-games check, daily digest. Each job runs
// isolated: panics are recovered, errors are logged and counted, and a
// still-running job is skipped rather than overlapped.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rpillai/dealwatch/internal/metrics"
	"go.uber.org/zap"
)

// Job is one schedulable unit of work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type funcJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

// NewJob adapts a plain function into a Job.
func NewJob(name string, run func(ctx context.Context) error) Job {
	return funcJob{name: name, run: run}
}

type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	metrics *metrics.Metrics

	ctx     context.Context
	startup []Job
}

func New(logger *zap.Logger, m *metrics.Metrics) *Scheduler {
	cronLogger := zapCronLogger{logger: logger.Named("cron")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			// Recover sits innermost so a panic is caught before it can
			// unwind through SkipIfStillRunning and strand its run token.
			cron.WithChain(cron.SkipIfStillRunning(cronLogger), cron.Recover(cronLogger)),
		),
		logger:  logger,
		metrics: m,
		ctx:     context.Background(),
	}
}

// Add schedules a job on a cron spec (standard five-field or "@every ...").
// With runAtStart the job also runs once right after Start, without waiting
// for the first tick.
func (s *Scheduler) Add(spec string, job Job, runAtStart bool) error {
	if _, err := s.cron.AddFunc(spec, func() { s.runJob(job) }); err != nil {
		return err
	}
	if runAtStart {
		s.startup = append(s.startup, job)
	}
	s.logger.Info("job scheduled", zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

// Start begins dispatching. ctx is handed to every job run; canceling it
// stops in-flight work at the next blocking call.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	for _, job := range s.startup {
		job := job
		go s.runJob(job)
	}
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runJob(job Job) {
	ctx := s.ctx
	if ctx.Err() != nil {
		return
	}

	s.logger.Info("job starting", zap.String("job", job.Name()))
	start := time.Now()
	err := job.Run(ctx)
	duration := time.Since(start)
	s.metrics.ObserveJobDuration(job.Name(), duration)

	if err != nil {
		s.metrics.IncJobFailure(job.Name())
		s.logger.Error(
			"job failed",
			zap.String("job", job.Name()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	s.metrics.IncJobSuccess(job.Name())
	s.logger.Info("job complete", zap.String("job", job.Name()), zap.Duration("duration", duration))
}

// zapCronLogger adapts zap to cron.Logger for the recovery and skip chains.
type zapCronLogger struct {
	logger *zap.Logger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
