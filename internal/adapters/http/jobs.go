package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"mindweb/internal/domain"
	"mindweb/internal/ports"
)

type scrapeRequest struct {
	URL           string `json:"url"`
	SummaryLength *int   `json:"summary_length"`
	MindMapType   string `json:"mindmap_type"`
}

type scrapeAccepted struct {
	JobID  string           `json:"job_id"`
	Status domain.JobStatus `json:"status"`
}

type jobList struct {
	Total int          `json:"total"`
	Jobs  []domain.Job `json:"jobs"`
}

type jobDeleted struct {
	JobID   string `json:"job_id"`
	Deleted bool   `json:"deleted"`
}

// jobIDParam binds the job_id path segment.
func jobIDParam(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "job_id", chi.URLParam(r, "job_id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", domain.ValidationError("invalid job_id: %v", err)
	}
	return id, nil
}

// waitParam binds the optional wait query flag.
func waitParam(r *http.Request) (bool, error) {
	var wait bool
	if err := runtime.BindQueryParameter("form", true, false, "wait", r.URL.Query(), &wait); err != nil {
		return false, domain.ValidationError("invalid wait parameter: %v", err)
	}
	return wait, nil
}

// postScrape queues a job. With wait=true it holds the request until the
// job is terminal and returns the job, or falls back to 202 after the sync
// timeout.
func (s *Server) postScrape(w http.ResponseWriter, r *http.Request) {
	wait, err := waitParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body scrapeRequest
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	length, err := optionalLength("summary_length", body.SummaryLength, s.limits.MaxLength)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.scraper.Enqueue(r.Context(), ports.ScrapeRequest{
		URL:           body.URL,
		SummaryLength: length,
		MindMapType:   domain.MindMapType(body.MindMapType),
	})
	if err != nil {
		s.failJob(w, r, id, err)
		return
	}
	status := domain.StatusQueued
	if wait {
		ctx, cancel := context.WithTimeout(r.Context(), s.syncTimeout)
		defer cancel()
		job, err := s.scraper.Wait(ctx, id)
		switch {
		case err == nil:
			ok(w, http.StatusOK, job)
			return
		case !errors.Is(err, context.DeadlineExceeded):
			s.failJob(w, r, id, err)
			return
		case job.Status != "":
			status = job.Status
		}
	}
	ok(w, http.StatusAccepted, scrapeAccepted{JobID: id, Status: status})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	job, err := s.scraper.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, job)
}

// listJobs returns job metadata only; results are fetched per job.
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.scraper.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for i := range jobs {
		jobs[i].Result = nil
	}
	ok(w, http.StatusOK, jobList{Total: len(jobs), Jobs: jobs})
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.scraper.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, jobDeleted{JobID: id, Deleted: true})
}

func (s *Server) getResult(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.scraper.Result(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, res)
}

func (s *Server) getMindMaps(w http.ResponseWriter, r *http.Request) {
	id, err := jobIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.scraper.Result(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, res.MindMaps)
}
