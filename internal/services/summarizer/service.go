// Package summarizer reduces extracted content to a word-bounded summary
// and a ranked list of key concepts.
package summarizer

import (
	"context"
	"strings"

	"mindweb/internal/domain"
	"mindweb/internal/logger"
	"mindweb/internal/text"
)

// MinWords is the shortest input worth summarizing.
const MinWords = 5

// DefaultLength applies when a caller passes a zero length.
const DefaultLength = 300

type Service struct {
	model         Model
	log           logger.Logger
	defaultLength int
}

type Option func(*Service)

// WithModel enables model-backed summaries. The extractive strategy stays
// as the fallback when the model fails.
func WithModel(m Model) Option {
	return func(s *Service) { s.model = m }
}

func WithDefaultLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLength = n
		}
	}
}

func New(log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Service{log: log, defaultLength: DefaultLength}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a summary of at most maxLength words plus up to
// MaxKeyConcepts key concepts.
func (s *Service) Summarize(ctx context.Context, content *domain.ScrapedContent, maxLength int) (*domain.SummaryResult, error) {
	if content == nil {
		return nil, domain.SummarizationError("no content to summarize")
	}
	if maxLength < 0 {
		return nil, domain.ValidationError("max_length must be positive, got %d", maxLength)
	}
	if maxLength == 0 {
		maxLength = s.defaultLength
	}
	if n := text.CountWords(fullText(content)); n < MinWords {
		return nil, domain.SummarizationError("content too short to summarize: %d words, need at least %d", n, MinWords)
	}
	if content.FullText == "" {
		c := *content
		c.FullText = fullText(content)
		content = &c
	}

	concepts := keyConcepts(content)
	if len(concepts) == 0 {
		return nil, domain.SummarizationError("no key concepts found in content")
	}

	if s.model != nil {
		summary, err := s.model.Summarize(ctx, content.Title, content.FullText, maxLength)
		if err == nil {
			return &domain.SummaryResult{
				Summary:     Truncate(summary, maxLength),
				KeyConcepts: concepts,
				Method:      domain.MethodAnthropic,
			}, nil
		}
		if ctx.Err() != nil {
			return nil, domain.SummarizationError("summarize: %v", ctx.Err())
		}
		s.log.Warn("model summary failed, using extractive",
			logger.String("url", content.URL),
			logger.Error(err),
		)
	}

	summary := extractive(content, maxLength)
	if summary == "" {
		return nil, domain.SummarizationError("no sentences found in content")
	}
	return &domain.SummaryResult{
		Summary:     Truncate(summary, maxLength),
		KeyConcepts: concepts,
		Method:      domain.MethodExtractive,
	}, nil
}

// FromText builds ScrapedContent from plain text, one section per
// blank-line separated paragraph.
func FromText(title, body string) *domain.ScrapedContent {
	var secs []domain.Section
	for _, para := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		para = text.Normalize(para)
		if para == "" {
			continue
		}
		secs = append(secs, domain.Section{Content: para, Keywords: text.TopTerms(para, 5)})
	}
	if len(secs) > 0 {
		secs[0].Title = title
	}
	c := &domain.ScrapedContent{Title: title, Sections: secs}
	c.FullText = fullText(c)
	c.WordCount = text.CountWords(c.FullText)
	return c
}

func sections(content *domain.ScrapedContent) []domain.Section {
	if len(content.Sections) > 0 {
		return content.Sections
	}
	if content.FullText == "" {
		return nil
	}
	return []domain.Section{{Title: content.Title, Content: content.FullText}}
}

func fullText(content *domain.ScrapedContent) string {
	if content.FullText != "" {
		return content.FullText
	}
	parts := make([]string, 0, len(content.Sections))
	for _, sec := range content.Sections {
		parts = append(parts, sec.Content)
	}
	return joinWords(parts)
}

func joinWords(parts []string) string {
	return text.Normalize(strings.Join(parts, " "))
}
