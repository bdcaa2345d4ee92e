package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"mindweb/internal/config"
	"mindweb/internal/domain"
)

const retryBase = 250 * time.Millisecond

// page is a fetched document before parsing.
type page struct {
	URL         string
	ContentType string
	Body        []byte
}

type fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	retries   int
}

func newFetcher(cfg config.FetchConfig) *fetcher {
	return &fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		retries:   cfg.Retries,
	}
}

// fetch GETs rawURL. Transient failures (network errors, 429, 5xx) are
// retried with exponential backoff up to f.retries extra attempts.
func (f *fetcher) fetch(ctx context.Context, rawURL string) (*page, error) {
	b := retry.WithMaxRetries(uint64(max(f.retries, 0)), retry.NewExponential(retryBase))

	var out *page
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		p, err := f.once(ctx, rawURL)
		if err != nil {
			var te *transientError
			if errors.As(err, &te) {
				return retry.RetryableError(te.err)
			}
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		if domain.KindOf(err) != "" {
			return nil, err
		}
		return nil, domain.FetchError(err, "fetch %s", rawURL)
	}
	return out, nil
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }

func (f *fetcher) once(ctx context.Context, rawURL string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.FetchError(err, "build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.FetchError(ctx.Err(), "fetch %s", rawURL)
		}
		return nil, &transientError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &transientError{err: statusErr}
		}
		return nil, domain.FetchError(statusErr, "fetch %s", rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, &transientError{err: fmt.Errorf("read body: %w", err)}
	}
	return &page{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
