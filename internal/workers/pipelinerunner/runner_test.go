package pipelinerunner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindweb/internal/adapters/memory"
	"mindweb/internal/domain"
	"mindweb/internal/events"
	"mindweb/internal/ports"
	"mindweb/internal/services/mindmap"
)

type fakeExtractor struct {
	calls atomic.Int32
	err   error
	block bool
	delay time.Duration
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (*domain.ScrapedContent, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, domain.FetchError(ctx.Err(), "fetch %s", url)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, domain.FetchError(ctx.Err(), "fetch %s", url)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ScrapedContent{
		URL:       url,
		Title:     "Rivers",
		Sections:  []domain.Section{{Title: "Rivers", Content: "Rivers carry water.", Keywords: []string{"rivers"}}},
		FullText:  "Rivers carry water.",
		WordCount: 3,
	}, nil
}

type fakeSummarizer struct{ err error }

func (f fakeSummarizer) Summarize(_ context.Context, c *domain.ScrapedContent, _ int) (*domain.SummaryResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SummaryResult{Summary: c.FullText, KeyConcepts: []string{"rivers", "water"}, Method: domain.MethodExtractive}, nil
}

func newRunner(t *testing.T, ex ports.Extractor, sum ports.Summarizer, cfg Config) (*Runner, ports.JobStore, *events.Hub) {
	t.Helper()
	hub := events.NewHub()
	store := hub.Wrap(memory.NewJobStore())
	p := NewPipeline(ex, sum, mindmap.New(), nil)
	return New(store, p, cfg, nil, nil), store, hub
}

func seed(t *testing.T, store ports.JobStore, id string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.Create(context.Background(), domain.Job{
		ID: id, URL: "https://example.com/" + id, Status: domain.StatusQueued,
		Stage: domain.StageQueued, MindMapType: domain.MindMapAll, CreatedAt: now, UpdatedAt: now,
	}))
}

func TestProcess_Completes(t *testing.T) {
	r, store, hub := newRunner(t, &fakeExtractor{}, fakeSummarizer{}, Config{Workers: 1, QueueSize: 1})
	seed(t, store, "j1")
	ch, cancel := hub.Subscribe("j1")
	defer cancel()

	require.NoError(t, r.Process(context.Background(), "j1"))

	var progress []int
	for j := range ch {
		progress = append(progress, j.Progress)
	}
	assert.Equal(t, []int{10, 40, 70, 95, 100}, progress)

	job, err := store.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, job.Status)
	assert.Equal(t, domain.StageDone, job.Stage)
	require.NotNil(t, job.Result)
	assert.Equal(t, "Rivers", job.Result.ScrapedContent.Title)
	assert.Len(t, job.Result.MindMaps.Hierarchical.Nodes, len(job.Result.Summary.KeyConcepts))
	assert.Empty(t, job.Error)
}

func TestProcess_StageFailureFreezesProgress(t *testing.T) {
	tests := []struct {
		name     string
		ex       *fakeExtractor
		sum      fakeSummarizer
		progress int
		msg      string
	}{
		{"extract", &fakeExtractor{err: domain.ParseError(nil, "no extractable content at x")}, fakeSummarizer{}, 10, "no extractable content at x"},
		{"summarize", &fakeExtractor{}, fakeSummarizer{err: domain.SummarizationError("content too short")}, 40, "content too short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store, _ := newRunner(t, tt.ex, tt.sum, Config{Workers: 1, QueueSize: 1})
			seed(t, store, "j1")

			err := r.Process(context.Background(), "j1")
			require.Error(t, err)

			job, err := store.Get(context.Background(), "j1")
			require.NoError(t, err)
			assert.Equal(t, domain.StatusFailed, job.Status)
			assert.Equal(t, tt.progress, job.Progress)
			assert.Equal(t, tt.msg, job.Error)
			assert.Nil(t, job.Result)
			assert.NotNil(t, job.CompletedAt)
		})
	}
}

func TestProcess_RunsOnce(t *testing.T) {
	ex := &fakeExtractor{}
	r, store, _ := newRunner(t, ex, fakeSummarizer{}, Config{Workers: 1, QueueSize: 1})
	seed(t, store, "j1")

	require.NoError(t, r.Process(context.Background(), "j1"))
	err := r.Process(context.Background(), "j1")
	assert.Error(t, err)
	assert.Equal(t, int32(1), ex.calls.Load())
}

func TestProcess_Timeout(t *testing.T) {
	r, store, _ := newRunner(t, &fakeExtractor{block: true}, fakeSummarizer{}, Config{Workers: 1, QueueSize: 1, JobTimeout: 50 * time.Millisecond})
	seed(t, store, "j1")

	require.Error(t, r.Process(context.Background(), "j1"))
	job, err := store.Get(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, job.Status)
	assert.Equal(t, "job timed out after 50ms", job.Error)
}

func TestSubmit_FullQueue(t *testing.T) {
	r, _, _ := newRunner(t, &fakeExtractor{}, fakeSummarizer{}, Config{Workers: 1, QueueSize: 1})
	require.NoError(t, r.Submit("a"))
	err := r.Submit("b")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, MsgQueueFull, err.Error())
}

func TestWorkers_DrainQueue(t *testing.T) {
	r, store, _ := newRunner(t, &fakeExtractor{}, fakeSummarizer{}, Config{Workers: 2, QueueSize: 8})
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	t.Cleanup(func() {
		cancel()
		r.Wait()
	})

	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		seed(t, store, id)
		require.NoError(t, r.Submit(id))
	}
	require.Eventually(t, func() bool {
		for _, id := range ids {
			j, err := store.Get(context.Background(), id)
			if err != nil || j.Status != domain.StatusCompleted {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkers_StopOnCancel(t *testing.T) {
	r, _, _ := newRunner(t, &fakeExtractor{}, fakeSummarizer{}, Config{Workers: 3, QueueSize: 1})
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestPipeline_MindMapError(t *testing.T) {
	p := NewPipeline(&fakeExtractor{}, emptyConcepts{}, mindmap.New(), nil)
	_, err := p.Run(context.Background(), ports.ScrapeRequest{URL: "https://example.com"}, nil)
	assert.True(t, errors.Is(err, domain.ErrMindMap))
}

type emptyConcepts struct{}

func (emptyConcepts) Summarize(context.Context, *domain.ScrapedContent, int) (*domain.SummaryResult, error) {
	return &domain.SummaryResult{Summary: "x", Method: domain.MethodExtractive}, nil
}

type pendingMemory struct {
	*memory.JobStore
}

func (p pendingMemory) idsWithStatus(status domain.JobStatus) ([]string, error) {
	jobs, err := p.List(context.Background())
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

func (p pendingMemory) Queued(context.Context) ([]string, error) {
	return p.idsWithStatus(domain.StatusQueued)
}

func (p pendingMemory) Running(context.Context) ([]string, error) {
	return p.idsWithStatus(domain.StatusRunning)
}

func TestResume_RequeuesQueuedAndFailsInterrupted(t *testing.T) {
	store := pendingMemory{JobStore: memory.NewJobStore()}
	for _, id := range []string{"a", "b", "c", "d"} {
		seed(t, store, id)
	}
	_, err := store.Update(context.Background(), "d", func(j *domain.Job) error {
		j.Status = domain.StatusRunning
		j.Progress = domain.ProgressExtracted
		return nil
	})
	require.NoError(t, err)

	r := New(store, NewPipeline(&fakeExtractor{}, fakeSummarizer{}, mindmap.New(), nil), Config{Workers: 1, QueueSize: 2}, nil, nil)
	n, err := r.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, r.queue, 2)

	d, err := store.Get(context.Background(), "d")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, d.Status)
	assert.Equal(t, MsgInterrupted, d.Error)
	assert.Equal(t, domain.ProgressExtracted, d.Progress)
}

func TestResume_StoreWithoutPendingList(t *testing.T) {
	r, _, _ := newRunner(t, &fakeExtractor{}, fakeSummarizer{}, Config{Workers: 1, QueueSize: 2})
	n, err := r.Resume(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestShutdown_FinishesClaimedJobs(t *testing.T) {
	r, store, _ := newRunner(t, &fakeExtractor{delay: 150 * time.Millisecond}, fakeSummarizer{},
		Config{Workers: 1, QueueSize: 4, JobTimeout: 5 * time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	seed(t, store, "running")
	seed(t, store, "waiting")
	require.NoError(t, r.Submit("running"))
	require.NoError(t, r.Submit("waiting"))

	require.Eventually(t, func() bool {
		j, err := store.Get(context.Background(), "running")
		return err == nil && j.Status == domain.StatusRunning
	}, time.Second, 5*time.Millisecond)
	cancel()

	drainCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	require.NoError(t, r.Drain(drainCtx))

	done, err := store.Get(context.Background(), "running")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status, done.Error)

	left, err := store.Get(context.Background(), "waiting")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, left.Status)
}

func TestDrain_GivesUp(t *testing.T) {
	r, store, _ := newRunner(t, &fakeExtractor{delay: time.Second}, fakeSummarizer{},
		Config{Workers: 1, QueueSize: 1, JobTimeout: 5 * time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	t.Cleanup(r.Wait)

	seed(t, store, "slow")
	require.NoError(t, r.Submit("slow"))
	require.Eventually(t, func() bool {
		j, err := store.Get(context.Background(), "slow")
		return err == nil && j.Status == domain.StatusRunning
	}, time.Second, 5*time.Millisecond)
	cancel()

	drainCtx, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	assert.ErrorIs(t, r.Drain(drainCtx), context.DeadlineExceeded)
}
