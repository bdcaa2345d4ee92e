package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mindweb/internal/domain"
	"mindweb/internal/logger"
)

// streamJob serves job snapshots as server-sent events named "job" until
// the job is terminal or the client goes away.
func (s *Server) streamJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		s.fail(w, r, fmt.Errorf("response writer does not support streaming"))
		return
	}
	updates, cancel, err := s.scraper.Subscribe(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log := logger.FromContext(r.Context())
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case job, open := <-updates:
			if !open {
				return
			}
			if err := writeEvent(w, job); err != nil {
				log.Debug("sse write failed", logger.String("job_id", id), logger.Error(err))
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, job domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: job\ndata: %s\n\n", data)
	return err
}
