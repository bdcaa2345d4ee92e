// Package httpadapter exposes the job pipeline over HTTP/JSON.
package httpadapter

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mindweb/internal/config"
	"mindweb/internal/domain"
	"mindweb/internal/logger"
	"mindweb/internal/metrics"
	"mindweb/internal/ports"
)

// Scraper is the job-facing service the handlers drive.
type Scraper interface {
	ports.Scraper
	Result(ctx context.Context, jobID string) (*domain.Result, error)
	Wait(ctx context.Context, jobID string) (domain.Job, error)
	ProcessURL(ctx context.Context, req ports.ScrapeRequest) (*domain.Result, error)
}

type Server struct {
	scraper    Scraper
	summarizer ports.Summarizer
	builder    ports.MindMapBuilder
	limits     config.SummaryConfig
	log        logger.Logger
	metrics    *metrics.Metrics

	// heartbeat is the idle interval between SSE keep-alive comments.
	heartbeat time.Duration
	// syncTimeout bounds /process-url and /scrape?wait=true.
	syncTimeout time.Duration
}

type Option func(*Server)

func WithMetrics(m *metrics.Metrics) Option { return func(s *Server) { s.metrics = m } }

func WithLogger(l logger.Logger) Option { return func(s *Server) { s.log = l } }

func WithHeartbeat(d time.Duration) Option { return func(s *Server) { s.heartbeat = d } }

func WithSyncTimeout(d time.Duration) Option { return func(s *Server) { s.syncTimeout = d } }

func New(scraper Scraper, summarizer ports.Summarizer, builder ports.MindMapBuilder, limits config.SummaryConfig, opts ...Option) *Server {
	s := &Server{
		scraper:     scraper,
		summarizer:  summarizer,
		builder:     builder,
		limits:      limits,
		log:         logger.NewNop(),
		heartbeat:   15 * time.Second,
		syncTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the chi router with middleware and every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, domain.NotFoundError("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Error: "method " + r.Method + " not allowed"})
	})

	r.Get("/", s.getIndex)
	r.Get("/healthz", s.getHealthz)
	r.Handle("/metrics", s.metrics.Handler())

	r.Post("/scrape", s.postScrape)
	r.Get("/jobs", s.listJobs)
	r.Route("/job/{job_id}", func(r chi.Router) {
		r.Get("/", s.getJob)
		r.Delete("/", s.deleteJob)
		r.Get("/result", s.getResult)
		r.Get("/mindmaps", s.getMindMaps)
		r.Get("/events", s.streamJob)
	})

	r.Post("/process-url", s.postProcessURL)
	r.Post("/summarize", s.postSummarize)
	r.Post("/mindmap", s.postMindMap)
	r.Get("/mindmap/types", s.getMindMapTypes)
	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
	ok(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getIndex(w http.ResponseWriter, _ *http.Request) {
	ok(w, http.StatusOK, map[string]any{
		"name":    "mindweb",
		"version": Version,
		"endpoints": []string{
			"POST /scrape?wait=true",
			"GET /jobs",
			"GET /job/{job_id}",
			"DELETE /job/{job_id}",
			"GET /job/{job_id}/result",
			"GET /job/{job_id}/mindmaps",
			"GET /job/{job_id}/events",
			"POST /process-url",
			"POST /summarize",
			"POST /mindmap",
			"GET /mindmap/types",
			"GET /healthz",
			"GET /metrics",
		},
	})
}

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"
