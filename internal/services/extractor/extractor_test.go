package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindweb/internal/config"
	"mindweb/internal/domain"
	"mindweb/internal/text"
)

const articleHTML = `<!doctype html>
<html lang="en-US">
<head><title>Rivers of the World</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<main>
<h1>Rivers of the World</h1>
<p>Rivers carry fresh water from mountains to the sea. Rivers shape valleys, deltas and the cities built along them.</p>
<h2>The Nile</h2>
<p>The Nile flows north through eleven countries. The Nile delta is one of the most fertile regions on Earth.</p>
<ul><li>Length of the Nile is about 6650 kilometres.</li><li>The Nile floods every summer.</li></ul>
<h2>The Amazon</h2>
<p>The Amazon carries more water than any other river. The Amazon basin holds the largest rainforest.</p>
<blockquote><p>The Amazon is the lung of the planet.</p></blockquote>
</main>
<footer>Copyright rivers inc</footer>
</body>
</html>`

func testConfig() config.FetchConfig {
	return config.FetchConfig{
		Timeout:      2 * time.Second,
		UserAgent:    "mindweb-test",
		MaxBodyBytes: 1 << 20,
	}
}

func serve(t *testing.T, contentType, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract_WordCountMatchesFullText(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", articleHTML, http.StatusOK)
	svc := New(testConfig(), nil, WithLanguageDetection(false))

	got, err := svc.Extract(context.Background(), srv.URL+"/rivers")
	require.NoError(t, err)

	assert.Equal(t, "Rivers of the World", got.Title)
	assert.Equal(t, "en", got.Language)
	require.NotEmpty(t, got.Sections)
	assert.Equal(t, text.CountWords(got.FullText), got.WordCount)

	var joined []string
	for _, sec := range got.Sections {
		assert.NotEmpty(t, sec.Content)
		assert.LessOrEqual(t, len(sec.Keywords), sectionKeywords)
		joined = append(joined, sec.Content)
	}
	assert.Equal(t, strings.Join(joined, " "), got.FullText)
	assert.Contains(t, got.FullText, "Nile")
	assert.Contains(t, got.FullText, "Amazon")
	assert.NotContains(t, got.FullText, "Copyright")
}

func TestExtract_SectionsFollowHeadings(t *testing.T) {
	srv := serve(t, "text/html", articleHTML, http.StatusOK)
	svc := New(testConfig(), nil, WithLanguageDetection(false))

	got, err := svc.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	var titles []string
	for _, sec := range got.Sections {
		titles = append(titles, sec.Title)
	}
	assert.Contains(t, titles, "The Nile")
	assert.Contains(t, titles, "The Amazon")
	nile := indexOf(titles, "The Nile")
	amazon := indexOf(titles, "The Amazon")
	assert.Less(t, nile, amazon)
	assert.Contains(t, got.Sections[nile].Keywords, "nile")
}

func indexOf(xs []string, want string) int {
	for i, x := range xs {
		if x == want {
			return i
		}
	}
	return -1
}

func TestExtract_EmptyPageIsParseError(t *testing.T) {
	srv := serve(t, "text/html", "<html><head><title>Nothing</title></head><body></body></html>", http.StatusOK)
	svc := New(testConfig(), nil, WithLanguageDetection(false))

	_, err := svc.Extract(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestExtract_NonHTMLIsParseError(t *testing.T) {
	srv := serve(t, "application/pdf", "%PDF-1.4 binary", http.StatusOK)
	svc := New(testConfig(), nil)

	_, err := svc.Extract(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestExtract_SniffsMissingContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte(articleHTML))
	}))
	t.Cleanup(srv.Close)

	got, err := New(testConfig(), nil, WithLanguageDetection(false)).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Rivers of the World", got.Title)
}

func TestExtract_Non2xxIsFetchError(t *testing.T) {
	srv := serve(t, "text/html", "gone", http.StatusNotFound)
	svc := New(testConfig(), nil)

	_, err := svc.Extract(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.Contains(t, err.Error(), "404")
}

func TestExtract_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "mindweb-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.Retries = 2
	_, err := New(cfg, nil, WithLanguageDetection(false)).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExtract_UnreachableIsFetchError(t *testing.T) {
	srv := serve(t, "text/html", articleHTML, http.StatusOK)
	url := srv.URL
	srv.Close()

	_, err := New(testConfig(), nil).Extract(context.Background(), url)
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestExtract_InvalidURL(t *testing.T) {
	_, err := New(testConfig(), nil).Extract(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCollectSections_SkipsNestedBlocks(t *testing.T) {
	pg := &page{
		URL:         "https://example.com/a",
		ContentType: "text/html",
		Body:        []byte(`<html><body><ul><li><p>Nested paragraph text here</p></li></ul></body></html>`),
	}
	doc, err := parseDocument(pg)
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Nested paragraph text here", doc.Sections[0].Content)
	assert.Equal(t, "Untitled", doc.Title)
}

func TestSiteOf(t *testing.T) {
	assert.Equal(t, "example.co.uk", siteOf("https://news.example.co.uk/story"))
	assert.Equal(t, "127.0.0.1", siteOf("http://127.0.0.1:8080/"))
}

func TestDeclaredLanguage(t *testing.T) {
	assert.Equal(t, "en", declaredLanguage("en-US"))
	assert.Equal(t, "fr", declaredLanguage(" FR "))
	assert.Equal(t, "", declaredLanguage("english"))
}

func TestDetectLanguage(t *testing.T) {
	if testing.Short() {
		t.Skip("loads language models")
	}
	assert.Equal(t, "en", detectLanguage("The quick brown fox jumps over the lazy dog while the farmer watches from the porch."))
	assert.Equal(t, "", detectLanguage("   "))
}
