package summarizer

import (
	"sort"

	"mindweb/internal/domain"
	"mindweb/internal/text"
)

const (
	leadBonus    = 0.5
	keywordBonus = 0.25
)

type sentence struct {
	index int
	text  string
	words int
	score float64
}

// splitSentences returns the sentences of every section in document order.
// The first sentence of a section is marked as a lead.
func splitSentences(content *domain.ScrapedContent) ([]sentence, []bool) {
	var (
		out  []sentence
		lead []bool
	)
	for _, sec := range sections(content) {
		for i, s := range text.Sentences(sec.Content) {
			out = append(out, sentence{index: len(out), text: s, words: text.CountWords(s)})
			lead = append(lead, i == 0)
		}
	}
	return out, lead
}

// extractive picks the highest scoring sentences that fit in maxWords and
// emits them in document order. A sentence scores the mean normalized
// frequency of its terms, plus a bonus when it leads a section and per
// section keyword it mentions.
func extractive(content *domain.ScrapedContent, maxWords int) string {
	sents, lead := splitSentences(content)
	if len(sents) == 0 {
		return ""
	}

	freq := text.Frequency(content.FullText)
	maxFreq := 1
	for _, n := range freq {
		maxFreq = max(maxFreq, n)
	}
	keywords := make(map[string]bool)
	for _, sec := range content.Sections {
		for _, kw := range sec.Keywords {
			keywords[kw] = true
		}
	}

	for i := range sents {
		terms := text.Terms(sents[i].text)
		var sum float64
		hits := make(map[string]bool)
		for _, t := range terms {
			sum += float64(freq[t]) / float64(maxFreq)
			if keywords[t] {
				hits[t] = true
			}
		}
		if len(terms) > 0 {
			sents[i].score = sum / float64(len(terms))
		}
		if lead[i] {
			sents[i].score += leadBonus
		}
		sents[i].score += keywordBonus * float64(len(hits))
	}

	ranked := append([]sentence(nil), sents...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var picked []sentence
	budget := maxWords
	for _, s := range ranked {
		if s.words <= budget {
			picked = append(picked, s)
			budget -= s.words
		}
		if budget == 0 {
			break
		}
	}
	if len(picked) == 0 {
		// Every sentence is longer than the budget; Truncate shortens the best.
		return Truncate(ranked[0].text, maxWords)
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	parts := make([]string, len(picked))
	for i, s := range picked {
		parts[i] = s.text
	}
	return joinWords(parts)
}
