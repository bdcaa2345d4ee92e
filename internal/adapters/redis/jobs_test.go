package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindweb/internal/config"
	"mindweb/internal/domain"
	"mindweb/internal/ports"
	"mindweb/internal/ports/jobstoretest"
)

func newTestStore(t *testing.T) (*JobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewJobStore(client, "test"), mr
}

func TestJobStore(t *testing.T) {
	jobstoretest.Run(t, func(t *testing.T) ports.JobStore {
		s, _ := newTestStore(t)
		return s
	})
}

func TestJobStore_KeyLayout(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, s.Create(context.Background(), jobstoretest.NewJob("abc", 0)))

	assert.True(t, mr.Exists("test:job:abc"))
	members, err := mr.ZMembers("test:jobs")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, members)
}

func TestJobStore_CorruptDocument(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set("test:job:bad", "{not json"))

	_, err := s.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), config.StoreConfig{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = Connect(context.Background(), config.StoreConfig{RedisAddr: addr})
	assert.Error(t, err)
}

func TestJobStore_PendingLists(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, jobstoretest.NewJob("late", time.Minute)))
	require.NoError(t, s.Create(ctx, jobstoretest.NewJob("early", 0)))
	require.NoError(t, s.Create(ctx, jobstoretest.NewJob("busy", time.Second)))
	_, err := s.Update(ctx, "busy", func(j *domain.Job) error {
		j.Status = domain.StatusRunning
		return nil
	})
	require.NoError(t, err)

	queued, err := s.Queued(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, queued)

	running, err := s.Running(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"busy"}, running)
}
