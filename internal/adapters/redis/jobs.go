package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"mindweb/internal/domain"
	"mindweb/internal/ports"
)

// maxTxRetries bounds optimistic-lock retries of one Update.
const maxTxRetries = 16

// JobStore keeps each job under <prefix>:job:<id> and a sorted set
// <prefix>:jobs of ids scored by creation time.
type JobStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewJobStore(client redis.UniversalClient, prefix string) *JobStore {
	if prefix == "" {
		prefix = "mindweb"
	}
	return &JobStore{client: client, prefix: prefix, now: time.Now}
}

func (s *JobStore) key(id string) string { return s.prefix + ":job:" + id }
func (s *JobStore) index() string { return s.prefix + ":jobs" }

func (s *JobStore) Create(ctx context.Context, job domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	ok, err := s.client.SetNX(ctx, s.key(job.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	if !ok {
		return domain.ConflictError("job %s already exists", job.ID)
	}
	member := redis.Z{Score: float64(job.CreatedAt.UnixNano()), Member: job.ID}
	if err := s.client.ZAdd(ctx, s.index(), member).Err(); err != nil {
		return fmt.Errorf("index job %s: %w", job.ID, err)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, id string) (domain.Job, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Job{}, domain.NotFoundError("job %s not found", id)
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job %s: %w", id, err)
	}
	return decode(id, raw)
}

// Update reads, mutates and writes the job inside WATCH/MULTI. A concurrent
// writer aborts the transaction and the whole read-modify-write reruns.
func (s *JobStore) Update(ctx context.Context, id string, mutate ports.Mutator) (domain.Job, error) {
	key := s.key(id)
	var out domain.Job

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.NotFoundError("job %s not found", id)
		}
		if err != nil {
			return fmt.Errorf("get job %s: %w", id, err)
		}
		cur, err := decode(id, raw)
		if err != nil {
			return err
		}
		next, err := ports.Apply(cur, mutate, s.now())
		if err != nil {
			out = cur
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode job %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	b := retry.WithMaxRetries(maxTxRetries, retry.NewExponential(time.Millisecond))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, redis.TxFailedErr) {
		return out, domain.ConflictError("job %s: too much write contention", id)
	}
	return out, err
}

// List returns every job, newest first.
func (s *JobStore) List(ctx context.Context) ([]domain.Job, error) {
	ids, err := s.client.ZRevRange(ctx, s.index(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Job{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	out := make([]domain.Job, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // deleted between ZREVRANGE and MGET
		}
		job, err := decode(ids[i], []byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Queued returns the ids of queued jobs, oldest first.
func (s *JobStore) Queued(ctx context.Context) ([]string, error) {
	return s.idsWithStatus(ctx, domain.StatusQueued)
}

// Running returns the ids of jobs marked running, oldest first.
func (s *JobStore) Running(ctx context.Context) ([]string, error) {
	return s.idsWithStatus(ctx, domain.StatusRunning)
}

func (s *JobStore) idsWithStatus(ctx context.Context, status domain.JobStatus) ([]string, error) {
	jobs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for i := len(jobs) - 1; i >= 0; i-- {
		if jobs[i].Status == status {
			ids = append(ids, jobs[i].ID)
		}
	}
	return ids, nil
}

func (s *JobStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	if err := s.client.ZRem(ctx, s.index(), id).Err(); err != nil {
		return fmt.Errorf("unindex job %s: %w", id, err)
	}
	if n == 0 {
		return domain.NotFoundError("job %s not found", id)
	}
	return nil
}

func decode(id string, raw []byte) (domain.Job, error) {
	var job domain.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return domain.Job{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	return job, nil
}

var (
	_ ports.JobStore      = (*JobStore)(nil)
	_ ports.PendingLister = (*JobStore)(nil)
)
