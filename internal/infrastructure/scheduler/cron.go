package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// CronTask is a periodic task body
type CronTask func(ctx context.Context) error

// CronRunner runs named periodic tasks on robfig/cron schedules
type CronRunner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCronRunner creates a runner whose schedules are evaluated in the named
// location. An unknown location falls back to UTC.
func NewCronRunner(location string, timeout time.Duration, logger *zap.Logger) *CronRunner {
	loc, err := time.LoadLocation(location)
	if err != nil {
		logger.Warn("Unknown cron location, using UTC", zap.String("location", location))
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CronRunner{
		cron:    cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		logger:  logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AddTask registers a task under a cron spec such as "@daily" or "@every 1h"
func (r *CronRunner) AddTask(name, spec string, task CronTask) error {
	_, err := r.cron.AddFunc(spec, func() {
		r.run(name, task)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for %s: %w", spec, name, err)
	}
	r.logger.Info("Cron task registered", zap.String("task", name), zap.String("spec", spec))
	return nil
}

func (r *CronRunner) run(name string, task CronTask) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Cron task panicked", zap.String("task", name), zap.Any("panic", rec))
		}
	}()

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	start := time.Now()
	if err := task(ctx); err != nil {
		r.logger.Error("Cron task failed",
			zap.String("task", name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	r.logger.Debug("Cron task finished", zap.String("task", name), zap.Duration("duration", time.Since(start)))
}

// Start starts the cron loop in its own goroutine
func (r *CronRunner) Start() {
	r.cron.Start()
	r.logger.Info("Cron runner started", zap.Int("tasks", len(r.cron.Entries())))
}

// Stop stops scheduling and waits for running tasks until ctx expires
func (r *CronRunner) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		r.cancel()
		r.logger.Info("Cron runner stopped")
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}
