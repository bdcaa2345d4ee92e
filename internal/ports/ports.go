package ports

import (
	"context"

	"mindweb/internal/domain"
)

// Extractor fetches a URL and produces structured sections of text.
type Extractor interface {
	Extract(ctx context.Context, url string) (*domain.ScrapedContent, error)
}

// Summarizer reduces structured content to a bounded summary and ranked concepts.
// maxLength is measured in words.
type Summarizer interface {
	Summarize(ctx context.Context, content *domain.ScrapedContent, maxLength int) (*domain.SummaryResult, error)
}

// MindMapBuilder renders key concepts into the requested mind-map formats.
type MindMapBuilder interface {
	Build(title string, keyConcepts []string, summary string, typ domain.MindMapType) (*domain.MindMapSet, error)
}

// Scraper enqueues and tracks scrape-and-analyze jobs.
type Scraper interface {
	Enqueue(ctx context.Context, req ScrapeRequest) (jobID string, err error)
	Get(ctx context.Context, jobID string) (domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
	Delete(ctx context.Context, jobID string) error
	Subscribe(ctx context.Context, jobID string) (<-chan domain.Job, func(), error)
}

// ScrapeRequest is the validated input of one job.
type ScrapeRequest struct {
	URL           string
	SummaryLength int
	MindMapType   domain.MindMapType
}
