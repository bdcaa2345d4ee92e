package httpadapter

import (
	"context"
	"net/http"
	"strings"

	"mindweb/internal/domain"
	"mindweb/internal/ports"
	"mindweb/internal/services/mindmap"
	"mindweb/internal/services/summarizer"
)

type processRequest struct {
	URL         string `json:"url"`
	MaxLength   *int   `json:"max_length"`
	MindMapType string `json:"mindmap_type"`
}

type summarizeRequest struct {
	Content   string `json:"content"`
	Title     string `json:"title"`
	MaxLength *int   `json:"max_length"`
}

type mindMapRequest struct {
	Title       string   `json:"title"`
	KeyConcepts []string `json:"key_concepts"`
	Summary     string   `json:"summary"`
	Type        string   `json:"type"`
}

// postProcessURL runs the whole pipeline inline and returns the result.
func (s *Server) postProcessURL(w http.ResponseWriter, r *http.Request) {
	var body processRequest
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	length, err := optionalLength("max_length", body.MaxLength, s.limits.MaxLength)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.syncTimeout)
	defer cancel()
	res, err := s.scraper.ProcessURL(ctx, ports.ScrapeRequest{
		URL:           body.URL,
		SummaryLength: length,
		MindMapType:   domain.MindMapType(body.MindMapType),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, res)
}

func (s *Server) postSummarize(w http.ResponseWriter, r *http.Request) {
	var body summarizeRequest
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		s.fail(w, r, domain.ValidationError("content is required"))
		return
	}
	length, err := optionalLength("max_length", body.MaxLength, s.limits.MaxLength)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.summarizer.Summarize(r.Context(), summarizer.FromText(body.Title, body.Content), length)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, res)
}

func (s *Server) postMindMap(w http.ResponseWriter, r *http.Request) {
	var body mindMapRequest
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	set, err := s.builder.Build(body.Title, body.KeyConcepts, body.Summary, domain.MindMapType(body.Type))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, set)
}

func (s *Server) getMindMapTypes(w http.ResponseWriter, _ *http.Request) {
	ok(w, http.StatusOK, mindmap.Types())
}
