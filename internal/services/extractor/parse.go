package extractor

import (
	"bytes"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"

	"mindweb/internal/domain"
	"mindweb/internal/text"
)

// sectionKeywords is the number of keyword candidates kept per section.
const sectionKeywords = 5

const (
	blockSelector     = "h1,h2,h3,h4,h5,h6,p,li,pre,blockquote"
	textBlockSelector = "p,li,pre,blockquote"
	boilerplate       = "script,style,noscript,nav,footer,header,aside,form,iframe,svg"
)

// contentSelectors are tried in order when readability finds nothing.
var contentSelectors = []string{
	"main", "article", "[role=main]", ".content", ".main-content", "#content", ".post-content",
}

// parsed is the structural outcome of parsing one document.
type parsed struct {
	Title    string
	Excerpt  string
	Language string
	Sections []domain.Section
}

func isHTML(contentType string, body []byte) bool {
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// parseDocument turns an HTML page into a title and ordered sections.
func parseDocument(p *page) (*parsed, error) {
	if !isHTML(p.ContentType, p.Body) {
		return nil, domain.ParseError(nil, "unsupported content type %q for %s", p.ContentType, p.URL)
	}
	r, err := charset.NewReader(bytes.NewReader(p.Body), p.ContentType)
	if err != nil {
		return nil, domain.ParseError(err, "decode %s", p.URL)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, domain.ParseError(err, "parse %s", p.URL)
	}
	html, err := doc.Html()
	if err != nil {
		return nil, domain.ParseError(err, "render %s", p.URL)
	}

	title := text.Normalize(doc.Find("title").First().Text())
	out := &parsed{Language: declaredLanguage(doc.Find("html").AttrOr("lang", ""))}

	// Readability isolates the main content by text density; when it gives
	// up we fall back to well-known content containers.
	var sections []domain.Section
	if pageURL, err := url.Parse(p.URL); err == nil {
		if article, err := readability.FromReader(strings.NewReader(html), pageURL); err == nil {
			if title == "" {
				title = text.Normalize(article.Title)
			}
			out.Excerpt = text.Normalize(article.Excerpt)
			if main, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content)); err == nil {
				sections = collectSections(main.Selection, title)
			}
		}
	}
	if len(sections) == 0 {
		doc.Find(boilerplate).Remove()
		sections = collectSections(mainContent(doc), title)
	}
	if title == "" {
		title = firstHeading(doc)
	}
	if title == "" {
		title = "Untitled"
	}
	if len(sections) > 0 && sections[0].Title == "" {
		sections[0].Title = title
	}
	if len(sections) == 0 {
		return nil, domain.ParseError(nil, "no extractable content at %s", p.URL)
	}
	out.Title = title
	out.Sections = sections
	return out, nil
}

func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 && strings.TrimSpace(s.Text()) != "" {
			return s
		}
	}
	return doc.Find("body")
}

func firstHeading(doc *goquery.Document) string {
	return text.Normalize(doc.Find("h1,h2,h3").First().Text())
}

// collectSections walks content blocks in document order. A heading opens
// a new section; text blocks append to the current one. Blocks nested in
// another text block are skipped so their text is counted once.
func collectSections(root *goquery.Selection, title string) []domain.Section {
	var (
		sections []domain.Section
		current  = domain.Section{Title: title}
		buf      []string
	)
	flush := func() {
		if len(buf) > 0 {
			current.Content = strings.Join(buf, " ")
			current.Keywords = text.TopTerms(current.Content, sectionKeywords)
			sections = append(sections, current)
		}
		buf = nil
	}

	root.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(textBlockSelector).Length() > 0 {
			return
		}
		t := text.Normalize(s.Text())
		switch goquery.NodeName(s) {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			flush()
			current = domain.Section{Title: t}
		default:
			if t != "" {
				buf = append(buf, t)
			}
		}
	})
	flush()
	return sections
}
