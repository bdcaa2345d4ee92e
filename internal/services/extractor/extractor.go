// Package extractor fetches a web page and turns it into ordered,
// keyword-tagged sections of text.
package extractor

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"mindweb/internal/config"
	"mindweb/internal/domain"
	"mindweb/internal/logger"
	"mindweb/internal/text"
)

type Service struct {
	fetcher *fetcher
	log     logger.Logger
	detect  func(string) string
}

type Option func(*Service)

// WithLanguageDetection toggles lingua-based language detection for pages
// that do not declare their language. It is on by default.
func WithLanguageDetection(enabled bool) Option {
	return func(s *Service) {
		if enabled {
			s.detect = detectLanguage
		} else {
			s.detect = nil
		}
	}
}

func New(cfg config.FetchConfig, log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Service{fetcher: newFetcher(cfg), log: log, detect: detectLanguage}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract fetches rawURL and parses it into ScrapedContent. It fails with a
// FetchError when the page cannot be retrieved and a ParseError when it is
// not HTML or holds no extractable text.
func (s *Service) Extract(ctx context.Context, rawURL string) (*domain.ScrapedContent, error) {
	if _, err := domain.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	pg, err := s.fetcher.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(pg)
	if err != nil {
		return nil, err
	}

	contents := make([]string, 0, len(doc.Sections))
	for _, sec := range doc.Sections {
		contents = append(contents, sec.Content)
	}
	fullText := strings.Join(contents, " ")

	lang := doc.Language
	if lang == "" && s.detect != nil {
		lang = s.detect(fullText)
	}

	out := &domain.ScrapedContent{
		URL:       pg.URL,
		Title:     doc.Title,
		Site:      siteOf(pg.URL),
		Language:  lang,
		Excerpt:   doc.Excerpt,
		Sections:  doc.Sections,
		FullText:  fullText,
		WordCount: text.CountWords(fullText),
	}
	s.log.Debug("extracted page",
		logger.String("url", out.URL),
		logger.Int("sections", len(out.Sections)),
		logger.Int("words", out.WordCount),
		logger.String("language", out.Language),
	)
	return out, nil
}

// siteOf returns the registrable domain of rawURL, or its host when the
// public suffix list has no answer (IPs, localhost).
func siteOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}
