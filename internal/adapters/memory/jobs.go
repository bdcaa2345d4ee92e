// Package memory is the default in-process job store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mindweb/internal/domain"
	"mindweb/internal/ports"
)

// JobStore keeps jobs in a map guarded by a single mutex. Every read and
// write copies, so callers never alias stored state.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]domain.Job
	now  func() time.Time
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]domain.Job), now: time.Now}
}

func (s *JobStore) Create(_ context.Context, job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return domain.ConflictError("job %s already exists", job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *JobStore) Get(_ context.Context, id string) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, domain.NotFoundError("job %s not found", id)
	}
	return job.Clone(), nil
}

func (s *JobStore) Update(_ context.Context, id string, mutate ports.Mutator) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, domain.NotFoundError("job %s not found", id)
	}
	next, err := ports.Apply(cur, mutate, s.now())
	if err != nil {
		return cur.Clone(), err
	}
	s.jobs[id] = next
	return next.Clone(), nil
}

// List returns every job, newest first.
func (s *JobStore) List(_ context.Context) ([]domain.Job, error) {
	s.mu.Lock()
	out := make([]domain.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Clone())
	}
	s.mu.Unlock()
	sortNewestFirst(out)
	return out, nil
}

func (s *JobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return domain.NotFoundError("job %s not found", id)
	}
	delete(s.jobs, id)
	return nil
}

func sortNewestFirst(jobs []domain.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
		}
		return jobs[i].ID < jobs[j].ID
	})
}

var _ ports.JobStore = (*JobStore)(nil)
