package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindweb/internal/adapters/memory"
	"mindweb/internal/domain"
)

func drain(ch <-chan domain.Job) []domain.Job {
	var out []domain.Job
	for j := range ch {
		out = append(out, j)
	}
	return out
}

func TestHub_DeliversUntilTerminal(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("j1")
	defer cancel()

	h.Publish(domain.Job{ID: "j1", Status: domain.StatusRunning, Progress: 10})
	h.Publish(domain.Job{ID: "other", Status: domain.StatusRunning})
	h.Publish(domain.Job{ID: "j1", Status: domain.StatusCompleted, Progress: 100})

	got := drain(ch)
	require.Len(t, got, 2)
	assert.Equal(t, 10, got[0].Progress)
	assert.Equal(t, domain.StatusCompleted, got[1].Status)
	assert.Zero(t, h.subscribers("j1"))
}

func TestHub_SlowSubscriberKeepsNewest(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("j1")
	defer cancel()

	for p := 1; p <= DefaultBufferSize*2; p++ {
		h.Publish(domain.Job{ID: "j1", Status: domain.StatusRunning, Progress: p})
	}
	h.Publish(domain.Job{ID: "j1", Status: domain.StatusFailed, Error: "boom"})

	got := drain(ch)
	require.Len(t, got, DefaultBufferSize)
	assert.Equal(t, domain.StatusFailed, got[len(got)-1].Status)
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("j1")
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, h.subscribers("j1"))

	// Publishing after cancel must not panic on the closed channel.
	h.Publish(domain.Job{ID: "j1", Status: domain.StatusCompleted})
}

func TestStore_PublishesCommittedSnapshots(t *testing.T) {
	h := NewHub()
	store := h.Wrap(memory.NewJobStore())
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, domain.Job{ID: "j1", Status: domain.StatusQueued}))

	ch, cancel := h.Subscribe("j1")
	defer cancel()

	_, err := store.Update(ctx, "j1", func(j *domain.Job) error {
		j.Status = domain.StatusRunning
		return nil
	})
	require.NoError(t, err)
	_, err = store.Update(ctx, "j1", func(j *domain.Job) error { return errors.New("rejected") })
	require.Error(t, err)
	_, err = store.Update(ctx, "j1", func(j *domain.Job) error {
		j.Status = domain.StatusFailed
		j.Error = "boom"
		return nil
	})
	require.NoError(t, err)

	got := drain(ch)
	require.Len(t, got, 2)
	assert.Equal(t, domain.StatusRunning, got[0].Status)
	assert.Equal(t, "boom", got[1].Error)
}

func TestStore_DeleteClosesSubscribers(t *testing.T) {
	h := NewHub()
	store := h.Wrap(memory.NewJobStore())
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, domain.Job{ID: "j1", Status: domain.StatusQueued}))

	ch, cancel := h.Subscribe("j1")
	defer cancel()
	require.NoError(t, store.Delete(ctx, "j1"))

	assert.Empty(t, drain(ch))
}

type pendingStore struct {
	*memory.JobStore
	queued, running []string
}

func (p pendingStore) Queued(context.Context) ([]string, error)  { return p.queued, nil }
func (p pendingStore) Running(context.Context) ([]string, error) { return p.running, nil }

func TestStore_PendingForwards(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	wrapped := h.Wrap(pendingStore{JobStore: memory.NewJobStore(), queued: []string{"a", "b"}, running: []string{"c"}})
	ids, err := wrapped.Queued(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	ids, err = wrapped.Running(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)

	plain := h.Wrap(memory.NewJobStore())
	ids, err = plain.Queued(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	ids, err = plain.Running(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
