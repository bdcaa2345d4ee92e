// Package events fans committed job snapshots out to per-job subscribers.
package events

import (
	"sync"

	"mindweb/internal/domain"
)

// DefaultBufferSize is the per-subscriber channel capacity.
const DefaultBufferSize = 8

type subscriber struct {
	ch   chan domain.Job
	once sync.Once
}

func (s *subscriber) close() { s.once.Do(func() { close(s.ch) }) }

// Hub delivers snapshots in commit order. A slow subscriber loses its
// oldest buffered snapshot, never the newest, so the terminal snapshot
// always arrives before the channel closes.
type Hub struct {
	mu         sync.Mutex
	subs       map[string]map[*subscriber]struct{}
	bufferSize int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{}), bufferSize: DefaultBufferSize}
}

// Subscribe registers for snapshots of jobID. The returned cancel func is
// idempotent and closes the channel if the hub has not already.
func (h *Hub) Subscribe(jobID string) (<-chan domain.Job, func()) {
	s := &subscriber{ch: make(chan domain.Job, h.bufferSize)}
	h.mu.Lock()
	set, ok := h.subs[jobID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[jobID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[jobID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, jobID)
			}
		}
		h.mu.Unlock()
		s.close()
	}
	return s.ch, cancel
}

// Publish sends job to its subscribers. Terminal snapshots close and drop
// every subscription for the job.
func (h *Hub) Publish(job domain.Job) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[job.ID]
	for s := range set {
		snap := job.Clone()
		select {
		case s.ch <- snap:
		default:
			select {
			case <-s.ch:
			default:
			}
			s.ch <- snap
		}
		if job.Status.Terminal() {
			s.close()
		}
	}
	if job.Status.Terminal() {
		delete(h.subs, job.ID)
	}
}

// Close ends every subscription for jobID without a final snapshot.
func (h *Hub) Close(jobID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[jobID] {
		s.close()
	}
	delete(h.subs, jobID)
}

// subscribers reports how many subscriptions jobID has.
func (h *Hub) subscribers(jobID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[jobID])
}
