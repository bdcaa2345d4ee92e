package summarizer

import (
	"strings"

	"mindweb/internal/domain"
	"mindweb/internal/text"
)

// MaxKeyConcepts caps the key concept list.
const MaxKeyConcepts = 10

const (
	keywordWeight = 2
	titleWeight   = 3
)

// keyConcepts ranks terms by salience: frequency in the full text, plus a
// bonus per section that lists the term as a keyword, plus a larger bonus
// per occurrence in the title.
func keyConcepts(content *domain.ScrapedContent) []string {
	scores := make(map[string]float64)
	for t, n := range text.Frequency(content.FullText) {
		scores[t] += float64(n)
	}
	for _, sec := range content.Sections {
		for _, kw := range sec.Keywords {
			scores[strings.ToLower(kw)] += keywordWeight
		}
	}
	for _, t := range text.Terms(content.Title) {
		scores[t] += titleWeight
	}

	seen := make(map[string]bool)
	var out []string
	for _, r := range text.Rank(scores, 0) {
		key := strings.ToLower(strings.TrimSpace(r.Term))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r.Term)
		if len(out) == MaxKeyConcepts {
			break
		}
	}
	return out
}
