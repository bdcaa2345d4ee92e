package extractor

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// languageSample bounds the text handed to the detector.
const languageSample = 4000

var detectorLanguages = []lingua.Language{
	lingua.English, lingua.French, lingua.German, lingua.Spanish,
	lingua.Italian, lingua.Portuguese, lingua.Dutch, lingua.Russian,
	lingua.Chinese, lingua.Japanese,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// detectLanguage returns the ISO 639-1 code for s, or "" when unsure.
func detectLanguage(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if r := []rune(s); len(r) > languageSample {
		s = string(r[:languageSample])
	}
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectorLanguages...).
			Build()
	})
	lang, ok := detector.DetectLanguageOf(s)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// declaredLanguage normalizes an <html lang> attribute like "en-US" to "en".
func declaredLanguage(attr string) string {
	attr = strings.ToLower(strings.TrimSpace(attr))
	if i := strings.IndexAny(attr, "-_"); i > 0 {
		attr = attr[:i]
	}
	if len(attr) != 2 {
		return ""
	}
	return attr
}
