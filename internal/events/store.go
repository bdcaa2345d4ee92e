package events

import (
	"context"

	"mindweb/internal/domain"
	"mindweb/internal/ports"
)

// Store publishes every committed snapshot of the wrapped store to a Hub.
type Store struct {
	ports.JobStore
	hub *Hub
}

func (h *Hub) Wrap(store ports.JobStore) *Store {
	return &Store{JobStore: store, hub: h}
}

func (s *Store) Create(ctx context.Context, job domain.Job) error {
	if err := s.JobStore.Create(ctx, job); err != nil {
		return err
	}
	s.hub.Publish(job)
	return nil
}

func (s *Store) Update(ctx context.Context, id string, mutate ports.Mutator) (domain.Job, error) {
	job, err := s.JobStore.Update(ctx, id, mutate)
	if err != nil {
		return job, err
	}
	s.hub.Publish(job)
	return job, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.JobStore.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Close(id)
	return nil
}

// Queued forwards to the wrapped store when it can list pending jobs.
func (s *Store) Queued(ctx context.Context) ([]string, error) {
	if l, ok := s.JobStore.(ports.PendingLister); ok {
		return l.Queued(ctx)
	}
	return nil, nil
}

// Running forwards to the wrapped store when it can list pending jobs.
func (s *Store) Running(ctx context.Context) ([]string, error) {
	if l, ok := s.JobStore.(ports.PendingLister); ok {
		return l.Running(ctx)
	}
	return nil, nil
}
