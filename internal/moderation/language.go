package moderation

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// languageGate decides whether a message is English enough for the fuzzy
// matching stages. The term lists are English; running phonetic and
// substitution matching on other languages mostly produces false positives.
type languageGate struct {
	detector   lingua.LanguageDetector
	minEnglish float64
}

// gateMinLength is the shortest message the detector is trusted on. Short
// fragments are ambiguous and pass through as English.
const gateMinLength = 20

func newLanguageGate(minEnglish float64) *languageGate {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
			lingua.Italian,
			lingua.Russian,
			lingua.Turkish,
			lingua.Arabic,
			lingua.Hindi,
			lingua.Japanese,
			lingua.Korean,
			lingua.Chinese,
		).
		Build()
	return &languageGate{detector: detector, minEnglish: minEnglish}
}

// likelyEnglish errs toward true: undetectable or short text is treated as
// English so the full pipeline still runs on it.
func (g *languageGate) likelyEnglish(text string) bool {
	if len(strings.TrimSpace(text)) < gateMinLength {
		return true
	}
	lang, ok := g.detector.DetectLanguageOf(text)
	if !ok {
		return true
	}
	if lang == lingua.English {
		return true
	}
	return g.detector.ComputeLanguageConfidence(text, lingua.English) >= g.minEnglish
}
