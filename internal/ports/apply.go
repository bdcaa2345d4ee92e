package ports

import (
	"fmt"
	"time"

	"mindweb/internal/domain"
)

func statusRank(s domain.JobStatus) int {
	switch s {
	case domain.StatusQueued:
		return 0
	case domain.StatusRunning:
		return 1
	case domain.StatusCompleted, domain.StatusFailed:
		return 2
	default:
		return -1
	}
}

// Apply runs mutate against a copy of current and enforces the job
// invariants every store shares: terminal jobs are frozen, status only moves
// forward, progress never decreases and is pinned at 100 on completion, and
// id/created_at are immutable. The returned job is what the store commits.
func Apply(current domain.Job, mutate Mutator, now time.Time) (domain.Job, error) {
	if current.Status.Terminal() {
		return current, domain.ErrTerminal
	}
	next := current.Clone()
	if err := mutate(&next); err != nil {
		return current, err
	}
	if statusRank(next.Status) < statusRank(current.Status) {
		return current, fmt.Errorf("invalid job transition %s -> %s", current.Status, next.Status)
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	if next.Progress < current.Progress {
		next.Progress = current.Progress
	}
	if next.Progress > domain.ProgressDone {
		next.Progress = domain.ProgressDone
	}
	switch next.Status {
	case domain.StatusCompleted:
		next.Progress = domain.ProgressDone
		next.Error = ""
	case domain.StatusFailed:
		next.Result = nil
	}
	if next.Status.Terminal() && next.CompletedAt == nil {
		t := now
		next.CompletedAt = &t
	}
	next.UpdatedAt = now
	return next, nil
}
