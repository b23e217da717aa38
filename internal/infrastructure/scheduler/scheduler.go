// Package scheduler runs background work: queued one-off jobs (order
// notification emails) on a worker pool, and cron tasks (stock alert scans,
// stale cart cleanup).
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// maxBackoff caps the doubling retry delay
const maxBackoff = 10 * time.Minute

// Job is work on one entity, routed to an executor by Kind
type Job struct {
	ID          uuid.UUID
	Kind        string
	EntityID    uuid.UUID
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

func NewJob(kind string, entityID uuid.UUID, maxRetries int) *Job {
	return &Job{ID: uuid.New(), Kind: kind, EntityID: entityID, Status: JobStatusPending, MaxRetries: maxRetries}
}

func (j *Job) Start() {
	now := time.Now()
	j.Status, j.StartedAt, j.CompletedAt, j.Error = JobStatusRunning, &now, nil, ""
}

func (j *Job) Complete() {
	now := time.Now()
	j.Status, j.CompletedAt = JobStatusSuccess, &now
}

func (j *Job) Fail(reason string) {
	now := time.Now()
	j.Status, j.CompletedAt, j.Error = JobStatusFailed, &now, reason
}

func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

func (j *Job) PrepareRetry() {
	j.RetryCount++
	j.Status, j.Error = JobStatusPending, ""
}

func (j *Job) fields() []zap.Field {
	return []zap.Field{
		zap.String("job_id", j.ID.String()),
		zap.String("kind", j.Kind),
		zap.String("entity_id", j.EntityID.String()),
		zap.Int("attempt", j.RetryCount+1),
	}
}

type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

type JobExecutorFunc func(ctx context.Context, job *Job) error

func (f JobExecutorFunc) Execute(ctx context.Context, job *Job) error { return f(ctx, job) }

type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
	RetryAttempts     int
	// RetryDelay is the first retry's delay. Each further retry doubles it.
	RetryDelay time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		QueueSize:         100,
		JobTimeout:        time.Minute,
		RetryAttempts:     3,
		RetryDelay:        30 * time.Second,
	}
}

// ConfigFrom overlays the non-zero scheduler.* settings on the defaults
func ConfigFrom(cfg config.SchedulerConfig) SchedulerConfig {
	out := DefaultSchedulerConfig()
	out.Enabled = cfg.Enabled
	setIfPositive(&out.MaxConcurrentJobs, cfg.MaxConcurrentJobs)
	setIfPositive(&out.QueueSize, cfg.QueueSize)
	setIfPositive(&out.RetryAttempts, cfg.RetryAttempts)
	setIfPositive(&out.JobTimeout, cfg.JobTimeout)
	setIfPositive(&out.RetryDelay, cfg.RetryDelay)
	return out
}

func setIfPositive[T int | time.Duration](dst *T, v T) {
	if v > 0 {
		*dst = v
	}
}

// Scheduler feeds a bounded queue to a fixed set of workers. Failed jobs go
// back on the queue after a backoff; Stop cancels retries that have not
// fired yet.
type Scheduler struct {
	cfg       SchedulerConfig
	log       *zap.Logger
	executors map[string]JobExecutor

	mu      sync.RWMutex
	running bool
	queue   chan *Job
	retries map[uuid.UUID]*time.Timer
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewScheduler(cfg SchedulerConfig, log *zap.Logger) *Scheduler {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cfg:       cfg,
		log:       log.Named("jobs"),
		executors: make(map[string]JobExecutor),
		retries:   make(map[uuid.UUID]*time.Timer),
	}
}

// Register binds kind to executor. Call it before Start.
func (s *Scheduler) Register(kind string, executor JobExecutor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executors[kind] = executor
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Start launches the workers. Calling it on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.queue = make(chan *Job, s.cfg.QueueSize)
	s.running = true

	for i := range s.cfg.MaxConcurrentJobs {
		s.wg.Add(1)
		go s.work(ctx, s.queue, i)
	}
	s.log.Info("Job scheduler started",
		zap.Int("workers", s.cfg.MaxConcurrentJobs),
		zap.Int("queue_size", s.cfg.QueueSize),
		zap.Duration("job_timeout", s.cfg.JobTimeout))
	return nil
}

// Stop closes the queue and waits for queued jobs to finish, or for ctx.
// Pending retries are dropped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	for id, timer := range s.retries {
		timer.Stop()
		delete(s.retries, id)
	}
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	defer s.cancel()

	select {
	case <-done:
		s.log.Info("Job scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn("Job scheduler stop timed out, cancelling running jobs")
		return ctx.Err()
	}
}

// SubmitJob never blocks: a full queue is an error
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case !s.running:
		return ErrSchedulerNotRunning
	case s.executors[job.Kind] == nil:
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}
	select {
	case s.queue <- job:
		s.log.Debug("Job queued", job.fields()...)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Submit queues a fresh job with the configured retry budget
func (s *Scheduler) Submit(kind string, entityID uuid.UUID) error {
	return s.SubmitJob(NewJob(kind, entityID, s.cfg.RetryAttempts))
}

func (s *Scheduler) work(ctx context.Context, queue <-chan *Job, worker int) {
	defer s.wg.Done()
	for job := range queue {
		s.process(ctx, job, worker)
	}
}

func (s *Scheduler) process(ctx context.Context, job *Job, worker int) {
	s.mu.RLock()
	executor := s.executors[job.Kind]
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	job.Start()
	err := safeExecute(ctx, executor, job)
	if err == nil {
		job.Complete()
		s.log.Info("Job completed", append(job.fields(), zap.Duration("took", job.CompletedAt.Sub(*job.StartedAt)))...)
		return
	}

	job.Fail(err.Error())
	s.log.Error("Job failed", append(job.fields(), zap.Int("worker", worker), zap.Error(err))...)
	if job.ShouldRetry() {
		job.PrepareRetry()
		s.retryLater(job)
	}
}

func safeExecute(ctx context.Context, executor JobExecutor, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return executor.Execute(ctx, job)
}

// backoff doubles RetryDelay per retry already made
func (s *Scheduler) backoff(retry int) time.Duration {
	d := s.cfg.RetryDelay
	for i := 1; i < retry && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

func (s *Scheduler) retryLater(job *Job) {
	delay := s.backoff(job.RetryCount)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.retries[job.ID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.retries, job.ID)
		s.mu.Unlock()
		if err := s.SubmitJob(job); err != nil {
			s.log.Warn("Job retry dropped", append(job.fields(), zap.Error(err))...)
		}
	})
	s.log.Info("Job retry scheduled", append(job.fields(), zap.Duration("delay", delay))...)
}

// PendingRetries counts retries waiting on their backoff timer
func (s *Scheduler) PendingRetries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.retries)
}
