// Package pipelinerunner runs scrape jobs on a fixed pool of workers fed by
// an in-process queue.
package pipelinerunner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mindweb/internal/domain"
	"mindweb/internal/logger"
	"mindweb/internal/metrics"
	"mindweb/internal/ports"
)

const (
	// finalizeTimeout bounds the terminal write after a job's own context
	// has expired.
	finalizeTimeout = 5 * time.Second

	MsgQueueFull   = "queue full"
	MsgInterrupted = "interrupted by server restart"
)

type Config struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

type Runner struct {
	store    ports.JobStore
	pipeline *Pipeline
	log      logger.Logger
	metrics  *metrics.Metrics
	cfg      Config

	queue chan string
	wg    sync.WaitGroup
}

func New(store ports.JobStore, pipeline *Pipeline, cfg Config, log logger.Logger, m *metrics.Metrics) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &Runner{
		store:    store,
		pipeline: pipeline,
		log:      log,
		metrics:  m,
		cfg:      cfg,
		queue:    make(chan string, cfg.QueueSize),
	}
}

// Submit queues jobID without blocking. A full queue yields an
// unavailable error and the job is left for the caller to fail.
func (r *Runner) Submit(jobID string) error {
	select {
	case r.queue <- jobID:
		r.metrics.SetQueueDepth(len(r.queue))
		return nil
	default:
		r.metrics.JobRejected()
		return domain.UnavailableError(MsgQueueFull)
	}
}

// Start launches the workers. They stop taking jobs once ctx is done;
// jobs still queued at that point stay queued in the store, and jobs
// already claimed run to completion.
func (r *Runner) Start(ctx context.Context) {
	for i := range r.cfg.Workers {
		r.wg.Add(1)
		go r.work(ctx, i)
	}
	r.log.Info("pipeline workers started",
		logger.Int("workers", r.cfg.Workers),
		logger.Int("queue_size", r.cfg.QueueSize),
		logger.Duration("job_timeout", r.cfg.JobTimeout),
	)
}

// Wait blocks until every worker has returned.
func (r *Runner) Wait() { r.wg.Wait() }

// Drain waits for the workers like Wait, giving up when ctx is done.
func (r *Runner) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain workers: %w", ctx.Err())
	}
}

func (r *Runner) work(ctx context.Context, idx int) {
	defer r.wg.Done()
	log := r.log.With(logger.Int("worker", idx))
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-r.queue:
			r.metrics.SetQueueDepth(len(r.queue))
			if ctx.Err() != nil {
				// Shutting down: leave the job queued for Resume.
				return
			}
			if err := r.Process(ctx, id); err != nil {
				log.Warn("job failed", logger.String("job_id", id), logger.Error(err))
			}
		}
	}
}

// Resume recovers the jobs a previous process left in a durable store.
// Jobs still running were cut off mid-pipeline and are failed with
// MsgInterrupted; queued jobs are submitted again. It returns how many
// jobs were requeued.
func (r *Runner) Resume(ctx context.Context) (int, error) {
	lister, ok := r.store.(ports.PendingLister)
	if !ok {
		return 0, nil
	}
	running, err := lister.Running(ctx)
	if err != nil {
		return 0, fmt.Errorf("list running jobs: %w", err)
	}
	for _, id := range running {
		r.Fail(ctx, id, MsgInterrupted)
	}
	if len(running) > 0 {
		r.log.Warn("failed interrupted jobs", logger.Int("count", len(running)))
	}

	ids, err := lister.Queued(ctx)
	if err != nil {
		return 0, fmt.Errorf("list queued jobs: %w", err)
	}
	n := 0
	for _, id := range ids {
		if err := r.Submit(id); err != nil {
			break
		}
		n++
	}
	return n, nil
}

// Process claims jobID and runs the pipeline for it. Only a queued job can
// be claimed, so each job runs at most once. Once claimed, the job is no
// longer tied to ctx: cancelling ctx stops a claim but not a running
// pipeline, which is bounded by JobTimeout alone. Stage failures end the
// job as failed with the stage's message; the error is also returned.
func (r *Runner) Process(ctx context.Context, jobID string) error {
	job, err := r.store.Update(ctx, jobID, func(j *domain.Job) error {
		if j.Status != domain.StatusQueued {
			return domain.ConflictError("job %s is %s, not queued", j.ID, j.Status)
		}
		j.Status = domain.StatusRunning
		j.Progress = domain.ProgressStarted
		j.Stage = domain.StageExtracting
		return nil
	})
	if err != nil {
		return fmt.Errorf("claim job %s: %w", jobID, err)
	}

	r.metrics.PipelineStarted()
	defer r.metrics.PipelineDone()
	start := time.Now()

	jobCtx := context.WithoutCancel(ctx)
	if r.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, r.cfg.JobTimeout)
		defer cancel()
	}

	req := ports.ScrapeRequest{URL: job.URL, SummaryLength: job.SummaryLength, MindMapType: job.MindMapType}
	result, err := r.pipeline.Run(jobCtx, req, func(ctx context.Context, stage string, progress int) error {
		_, err := r.store.Update(ctx, jobID, func(j *domain.Job) error {
			j.Stage = stage
			j.Progress = progress
			return nil
		})
		return err
	})

	finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if err != nil {
		msg := err.Error()
		if errors.Is(jobCtx.Err(), context.DeadlineExceeded) {
			msg = fmt.Sprintf("job timed out after %s", r.cfg.JobTimeout)
		}
		r.Fail(finalCtx, jobID, msg)
		return err
	}

	_, err = r.store.Update(finalCtx, jobID, func(j *domain.Job) error {
		j.Status = domain.StatusCompleted
		j.Stage = domain.StageDone
		j.Result = result
		return nil
	})
	if err != nil {
		return fmt.Errorf("complete job %s: %w", jobID, err)
	}
	r.metrics.JobFinished(string(domain.StatusCompleted))
	r.log.Info("job completed",
		logger.String("job_id", jobID),
		logger.String("url", job.URL),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Fail marks a non-terminal job failed with msg.
func (r *Runner) Fail(ctx context.Context, jobID, msg string) {
	_, err := r.store.Update(ctx, jobID, func(j *domain.Job) error {
		j.Status = domain.StatusFailed
		j.Error = msg
		return nil
	})
	if err != nil {
		r.log.Error("mark job failed", logger.String("job_id", jobID), logger.Error(err))
		return
	}
	r.metrics.JobFinished(string(domain.StatusFailed))
}
