// Package scraper accepts scrape requests, tracks their jobs and exposes
// the synchronous variants of the pipeline.
package scraper

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mindweb/internal/config"
	"mindweb/internal/domain"
	"mindweb/internal/events"
	"mindweb/internal/logger"
	"mindweb/internal/metrics"
	"mindweb/internal/ports"
	"mindweb/internal/workers/pipelinerunner"
)

// Queue hands job ids to the workers.
type Queue interface {
	Submit(jobID string) error
	Fail(ctx context.Context, jobID, msg string)
}

type Service struct {
	store    ports.JobStore
	queue    Queue
	pipeline *pipelinerunner.Pipeline
	hub      *events.Hub
	limits   config.SummaryConfig
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(store ports.JobStore, queue Queue, pipeline *pipelinerunner.Pipeline, hub *events.Hub,
	limits config.SummaryConfig, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:    store,
		queue:    queue,
		pipeline: pipeline,
		hub:      hub,
		limits:   limits,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// Normalize validates req and fills defaults for summary length and
// mind map type.
func (s *Service) Normalize(req ports.ScrapeRequest) (ports.ScrapeRequest, error) {
	u, err := domain.ValidateURL(req.URL)
	if err != nil {
		return req, err
	}
	req.URL = u.String()
	switch {
	case req.SummaryLength < 0:
		return req, domain.ValidationError("summary length must be positive, got %d", req.SummaryLength)
	case req.SummaryLength == 0:
		req.SummaryLength = s.limits.DefaultLength
	case s.limits.MaxLength > 0 && req.SummaryLength > s.limits.MaxLength:
		return req, domain.ValidationError("summary length %d exceeds the maximum of %d", req.SummaryLength, s.limits.MaxLength)
	}
	typ, err := domain.ParseMindMapType(string(req.MindMapType))
	if err != nil {
		return req, err
	}
	req.MindMapType = typ
	return req, nil
}

// Enqueue creates a queued job for req and hands it to the workers. When
// the queue is full the job is recorded as failed and an unavailable error
// is returned alongside its id.
func (s *Service) Enqueue(ctx context.Context, req ports.ScrapeRequest) (string, error) {
	req, err := s.Normalize(req)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	job := domain.Job{
		ID:            uuid.NewString(),
		URL:           req.URL,
		SummaryLength: req.SummaryLength,
		MindMapType:   req.MindMapType,
		Status:        domain.StatusQueued,
		Stage:         domain.StageQueued,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return "", err
	}
	if err := s.queue.Submit(job.ID); err != nil {
		s.queue.Fail(ctx, job.ID, err.Error())
		s.log.Warn("job rejected", logger.String("job_id", job.ID), logger.Error(err))
		return job.ID, err
	}
	s.metrics.JobSubmitted()
	s.log.Info("job queued", logger.String("job_id", job.ID), logger.String("url", job.URL))
	return job.ID, nil
}

func (s *Service) Get(ctx context.Context, jobID string) (domain.Job, error) {
	return s.store.Get(ctx, jobID)
}

func (s *Service) List(ctx context.Context) ([]domain.Job, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, jobID string) error {
	return s.store.Delete(ctx, jobID)
}

// Result returns the composed result of a completed job, or a conflict
// error while the job is still pending or has failed.
func (s *Service) Result(ctx context.Context, jobID string) (*domain.Result, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case domain.StatusCompleted:
		return job.Result, nil
	case domain.StatusFailed:
		return nil, domain.ConflictError("job %s failed: %s", jobID, job.Error)
	default:
		return nil, domain.ConflictError("job %s is %s, result not ready", jobID, job.Status)
	}
}

// Subscribe streams snapshots of jobID, starting with the current one and
// ending after the terminal one. cancel releases the subscription.
func (s *Service) Subscribe(ctx context.Context, jobID string) (<-chan domain.Job, func(), error) {
	updates, unsubscribe := s.hub.Subscribe(jobID)
	current, err := s.store.Get(ctx, jobID)
	if err != nil {
		unsubscribe()
		return nil, nil, err
	}

	out := make(chan domain.Job, 1)
	out <- current
	if current.Status.Terminal() {
		unsubscribe()
		close(out)
		return out, func() {}, nil
	}

	ctx, stop := context.WithCancel(ctx)
	go func() {
		defer close(out)
		defer unsubscribe()
		last := current
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-updates:
				if !ok {
					return
				}
				// Snapshots committed before our read may still be buffered.
				if job.UpdatedAt.Before(last.UpdatedAt) {
					continue
				}
				last = job
				select {
				case out <- job:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, stop, nil
}

// Wait blocks until jobID reaches a terminal state or ctx is done.
func (s *Service) Wait(ctx context.Context, jobID string) (domain.Job, error) {
	updates, cancel, err := s.Subscribe(ctx, jobID)
	if err != nil {
		return domain.Job{}, err
	}
	defer cancel()
	var last domain.Job
	for job := range updates {
		last = job
	}
	if last.Status.Terminal() {
		return last, nil
	}
	if err := ctx.Err(); err != nil {
		return last, err
	}
	// The stream ended without a terminal snapshot (job deleted or the
	// subscription was dropped); the store has the final word.
	return s.store.Get(ctx, jobID)
}

// ProcessURL runs the whole pipeline inline without creating a job.
func (s *Service) ProcessURL(ctx context.Context, req ports.ScrapeRequest) (*domain.Result, error) {
	req, err := s.Normalize(req)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Run(ctx, req, nil)
}
