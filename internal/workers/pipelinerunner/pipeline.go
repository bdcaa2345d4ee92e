package pipelinerunner

import (
	"context"
	"time"

	"mindweb/internal/domain"
	"mindweb/internal/metrics"
	"mindweb/internal/ports"
)

// Checkpoint records that the pipeline reached stage with progress.
type Checkpoint func(ctx context.Context, stage string, progress int) error

// Pipeline runs extraction, summarization and mind map building in order
// for one URL. It holds no per-job state and is shared by all workers.
type Pipeline struct {
	extractor  ports.Extractor
	summarizer ports.Summarizer
	builder    ports.MindMapBuilder
	metrics    *metrics.Metrics
}

func NewPipeline(e ports.Extractor, s ports.Summarizer, b ports.MindMapBuilder, m *metrics.Metrics) *Pipeline {
	return &Pipeline{extractor: e, summarizer: s, builder: b, metrics: m}
}

// Run executes every stage for req. checkpoint may be nil. The first stage
// error is returned unchanged and no partial result is produced.
func (p *Pipeline) Run(ctx context.Context, req ports.ScrapeRequest, checkpoint Checkpoint) (*domain.Result, error) {
	if checkpoint == nil {
		checkpoint = func(context.Context, string, int) error { return nil }
	}

	var content *domain.ScrapedContent
	err := p.stage(domain.StageExtracting, func() (err error) {
		content, err = p.extractor.Extract(ctx, req.URL)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := checkpoint(ctx, domain.StageSummarizing, domain.ProgressExtracted); err != nil {
		return nil, err
	}

	var summary *domain.SummaryResult
	err = p.stage(domain.StageSummarizing, func() (err error) {
		summary, err = p.summarizer.Summarize(ctx, content, req.SummaryLength)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.metrics.SummaryProduced(string(summary.Method))
	if err := checkpoint(ctx, domain.StageBuilding, domain.ProgressSummarized); err != nil {
		return nil, err
	}

	var maps *domain.MindMapSet
	err = p.stage(domain.StageBuilding, func() (err error) {
		maps, err = p.builder.Build(content.Title, summary.KeyConcepts, summary.Summary, req.MindMapType)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := checkpoint(ctx, domain.StageBuilding, domain.ProgressMapped); err != nil {
		return nil, err
	}

	return &domain.Result{
		ScrapedContent: *content,
		Summary:        *summary,
		MindMaps:       *maps,
	}, nil
}

func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.ObserveStage(name, time.Since(start), err)
	return err
}
