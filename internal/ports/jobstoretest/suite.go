// Package jobstoretest is the behavioral suite every ports.JobStore
// implementation runs in its own tests.
package jobstoretest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindweb/internal/domain"
	"mindweb/internal/ports"
)

// NewJob returns a queued job created at a fixed instant plus offset.
func NewJob(id string, offset time.Duration) domain.Job {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset)
	return domain.Job{
		ID:            id,
		URL:           "https://example.com/" + id,
		SummaryLength: 300,
		MindMapType:   domain.MindMapAll,
		Status:        domain.StatusQueued,
		Stage:         domain.StageQueued,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func sampleResult() *domain.Result {
	return &domain.Result{
		ScrapedContent: domain.ScrapedContent{
			URL:   "https://example.com/a",
			Title: "A",
			Sections: []domain.Section{
				{Title: "A", Content: "alpha beta gamma", Keywords: []string{"alpha"}},
			},
			FullText:  "alpha beta gamma",
			WordCount: 3,
		},
		Summary: domain.SummaryResult{Summary: "alpha beta", KeyConcepts: []string{"alpha"}, Method: domain.MethodExtractive},
		MindMaps: domain.MindMapSet{
			Visual: "A\n  - alpha",
		},
	}
}

// Run exercises store against the JobStore contract. newStore must return
// an empty store for every call.
func Run(t *testing.T, newStore func(t *testing.T) ports.JobStore) {
	ctx := context.Background()

	t.Run("get unknown is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = s.Update(ctx, "missing", func(*domain.Job) error { return nil })
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, s.Delete(ctx, "missing"), domain.ErrNotFound)
	})

	t.Run("create then get", func(t *testing.T) {
		s := newStore(t)
		job := NewJob("j1", 0)
		require.NoError(t, s.Create(ctx, job))

		got, err := s.Get(ctx, "j1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusQueued, got.Status)
		assert.Equal(t, 0, got.Progress)
		assert.Equal(t, job.URL, got.URL)
		assert.True(t, job.CreatedAt.Equal(got.CreatedAt))

		assert.Error(t, s.Create(ctx, job), "duplicate id")
	})

	t.Run("update lifecycle", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, NewJob("j1", 0)))

		running, err := s.Update(ctx, "j1", func(j *domain.Job) error {
			j.Status = domain.StatusRunning
			j.Progress = domain.ProgressStarted
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRunning, running.Status)

		done, err := s.Update(ctx, "j1", func(j *domain.Job) error {
			j.Status = domain.StatusCompleted
			j.Result = sampleResult()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 100, done.Progress)
		require.NotNil(t, done.CompletedAt)

		got, err := s.Get(ctx, "j1")
		require.NoError(t, err)
		require.NotNil(t, got.Result)
		assert.Equal(t, "alpha beta", got.Result.Summary.Summary)
		assert.Equal(t, []string{"alpha"}, got.Result.ScrapedContent.Sections[0].Keywords)

		_, err = s.Update(ctx, "j1", func(j *domain.Job) error {
			j.Progress = 5
			return nil
		})
		assert.ErrorIs(t, err, domain.ErrTerminal)

		again, err := s.Get(ctx, "j1")
		require.NoError(t, err)
		assert.Equal(t, got.Status, again.Status)
		assert.Equal(t, got.Progress, again.Progress)
		assert.True(t, got.UpdatedAt.Equal(again.UpdatedAt))
	})

	t.Run("mutator error writes nothing", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, NewJob("j1", 0)))
		_, err := s.Update(ctx, "j1", func(j *domain.Job) error {
			j.Progress = 50
			return fmt.Errorf("nope")
		})
		require.Error(t, err)

		got, err := s.Get(ctx, "j1")
		require.NoError(t, err)
		assert.Equal(t, 0, got.Progress)
	})

	t.Run("snapshots are copies", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, NewJob("j1", 0)))
		_, err := s.Update(ctx, "j1", func(j *domain.Job) error {
			j.Status = domain.StatusCompleted
			j.Result = sampleResult()
			return nil
		})
		require.NoError(t, err)

		first, err := s.Get(ctx, "j1")
		require.NoError(t, err)
		first.Result.Summary.KeyConcepts[0] = "mutated"

		second, err := s.Get(ctx, "j1")
		require.NoError(t, err)
		assert.Equal(t, "alpha", second.Result.Summary.KeyConcepts[0])
	})

	t.Run("only one claim wins", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, NewJob("j1", 0)))

		const workers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Update(ctx, "j1", func(j *domain.Job) error {
					if j.Status != domain.StatusQueued {
						return domain.ConflictError("job %s already claimed", j.ID)
					}
					j.Status = domain.StatusRunning
					j.Progress = domain.ProgressStarted
					return nil
				})
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("list newest first and delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, NewJob("old", 0)))
		require.NoError(t, s.Create(ctx, NewJob("new", time.Minute)))

		jobs, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, "new", jobs[0].ID)
		assert.Equal(t, "old", jobs[1].ID)

		require.NoError(t, s.Delete(ctx, "old"))
		jobs, err = s.List(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		_, err = s.Get(ctx, "old")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
