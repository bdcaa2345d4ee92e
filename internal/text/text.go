// Package text holds the tokenizing and term-ranking helpers shared by the
// extractor and the summarizer.
package text

import (
	"sort"
	"strings"
	"unicode"
)

// MinTermLen is the shortest token considered a term.
const MinTermLen = 3

// Normalize collapses all whitespace runs to single spaces and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// Terms returns the lowercased ranking terms in s, in order, with
// punctuation trimmed and stopwords, numbers and short tokens removed.
func Terms(s string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '-' && r != '\'')
	}) {
		if t := term(w); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func term(w string) string {
	w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
	w = strings.TrimSuffix(w, "'s")
	if len([]rune(w)) < MinTermLen || IsStopword(w) {
		return ""
	}
	hasLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return ""
	}
	return w
}

// Frequency counts term occurrences in s.
func Frequency(s string) map[string]int {
	freq := make(map[string]int)
	for _, t := range Terms(s) {
		freq[t]++
	}
	return freq
}

// Scored is a term with its score.
type Scored struct {
	Term  string
	Score float64
}

// Rank sorts scores descending, ties broken alphabetically so output is
// deterministic, and returns at most n entries (all when n <= 0).
func Rank(scores map[string]float64, n int) []Scored {
	out := make([]Scored, 0, len(scores))
	for t, s := range scores {
		out = append(out, Scored{Term: t, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopTerms returns the n most frequent terms of s.
func TopTerms(s string, n int) []string {
	freq := Frequency(s)
	scores := make(map[string]float64, len(freq))
	for t, c := range freq {
		scores[t] = float64(c)
	}
	ranked := Rank(scores, n)
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Term
	}
	return out
}

// Sentences splits s into trimmed sentences on . ! ? followed by
// whitespace or end of text. Terminal punctuation is kept.
func Sentences(s string) []string {
	s = Normalize(s)
	var out []string
	start := 0
	runes := []rune(s)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if sent := strings.TrimSpace(string(runes[start : i+1])); sent != "" {
			out = append(out, sent)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}
