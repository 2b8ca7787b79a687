package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type jobRunKey struct{}

// jobRun tracks one scheduler pass for logging.
type jobRun struct {
	job       string
	startedAt time.Time
	processed atomic.Int64
	failed    atomic.Int64
}

func (r *jobRun) AddProcessed(n int) {
	r.processed.Add(int64(n))
}

func (r *jobRun) Processed() int {
	return int(r.processed.Load())
}

func (s *Scheduler) ensureJobRun(ctx context.Context, job string) (context.Context, *jobRun) {
	if run, ok := ctx.Value(jobRunKey{}).(*jobRun); ok {
		return ctx, run
	}
	run := &jobRun{job: job, startedAt: s.clock.Now(ctx)}
	return context.WithValue(ctx, jobRunKey{}, run), run
}

func (s *Scheduler) logJobStart(ctx context.Context, run *jobRun) {
	s.log.Debug("scheduler job started", zap.String("job", run.job))
}

func (s *Scheduler) logJobFinish(ctx context.Context, run *jobRun) {
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.Int64("processed", run.processed.Load()),
		zap.Int64("failed", run.failed.Load()),
		zap.Duration("duration", s.clock.Now(ctx).Sub(run.startedAt)),
	}
	if run.processed.Load() == 0 && run.failed.Load() == 0 {
		s.log.Debug("scheduler job finished", fields...)
		return
	}
	s.log.Info("scheduler job finished", fields...)
}

func (s *Scheduler) logSchedulerError(ctx context.Context, run *jobRun, event, hook string, err error) {
	run.failed.Add(1)
	s.log.Error("scheduler error",
		zap.String("event", event),
		zap.String("job", run.job),
		zap.String("hook", hook),
		zap.Error(err),
	)
}

// cronLogger adapts zap to the cron logger interface.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
