package ports

import (
	"context"

	"mindweb/internal/domain"
)

// Mutator changes a job in place. Returning an error aborts the update and
// leaves the stored job untouched.
type Mutator func(job *domain.Job) error

// JobStore is the keyed table of job records polled by clients.
//
// Update applies the mutator atomically: concurrent readers observe either
// the state before or after, never a partial write. Implementations refuse
// to mutate jobs already in a terminal state (domain.ErrTerminal) and keep
// progress from decreasing.
type JobStore interface {
	Create(ctx context.Context, job domain.Job) error
	Get(ctx context.Context, id string) (domain.Job, error)
	Update(ctx context.Context, id string, mutate Mutator) (domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
	Delete(ctx context.Context, id string) error
}

// PendingLister is implemented by durable stores that can report the jobs a
// previous process left unfinished, oldest first.
type PendingLister interface {
	Queued(ctx context.Context) ([]string, error)
	Running(ctx context.Context) ([]string, error)
}
