package summarizer

import (
	"strings"
)

// Truncate cuts s to at most maxWords whitespace-separated words. It keeps
// whole words and prefers to stop at the last sentence end inside the
// budget when that keeps at least half of it.
func Truncate(s string, maxWords int) string {
	words := strings.Fields(s)
	if maxWords <= 0 {
		return ""
	}
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	cut := words[:maxWords]
	for i := len(cut) - 1; i >= 0 && i+1 >= (maxWords+1)/2; i-- {
		if endsSentence(cut[i]) {
			return strings.Join(cut[:i+1], " ")
		}
	}
	return strings.Join(cut, " ")
}

func endsSentence(word string) bool {
	word = strings.TrimRight(word, `"')]`)
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}
