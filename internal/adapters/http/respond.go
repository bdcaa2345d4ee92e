package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"mindweb/internal/domain"
	"mindweb/internal/logger"
)

// maxBodyBytes caps request bodies; /summarize carries whole documents.
const maxBodyBytes = 4 << 20

// envelope is the wire shape of every JSON response except /metrics.
// JobID is set on failures that still created a job the client can poll.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	JobID   string `json:"job_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindFetch:
		return http.StatusBadGateway
	case domain.KindParse, domain.KindSummarization, domain.KindMindMap:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.failJob(w, r, "", err)
}

// failJob is fail for errors that leave jobID behind in the store.
func (s *Server) failJob(w http.ResponseWriter, r *http.Request, jobID string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		msg = "internal server error"
	}
	writeJSON(w, status, envelope{Success: false, Error: msg, JobID: jobID})
}

// decode reads a JSON body into v. Unknown fields are ignored.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.ValidationError("request body exceeds %d bytes", maxErr.Limit)
		}
		return domain.ValidationError("invalid JSON body: %v", err)
	}
	return nil
}

// optionalLength validates an optional positive length field.
func optionalLength(name string, v *int, limit int) (int, error) {
	if v == nil {
		return 0, nil
	}
	if *v <= 0 {
		return 0, domain.ValidationError("%s must be positive, got %d", name, *v)
	}
	if limit > 0 && *v > limit {
		return 0, domain.ValidationError("%s %d exceeds the maximum of %d", name, *v, limit)
	}
	return *v, nil
}
