package filter

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizerPool recycles the transform chain; transformers carry internal
// state and are not safe for concurrent use.
var normalizerPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			runes.Remove(runes.In(hiddenSeparators)),
			norm.NFKC,
		)
	},
}

// spacedLetters matches runs of three or more single letters separated by
// whitespace, e.g. "f u c k". The run is collapsed into one word.
var spacedLetters = regexp.MustCompile(`\b(?:[a-z]\s+){2,}[a-z]\b`)

// Preprocess canonicalizes a message for matching: strips hidden separators,
// applies NFKC compatibility folding, folds cross-script homoglyphs,
// lowercases, squashes repeated characters, collapses spaced-out letters and
// drops everything outside ASCII letters, digits and whitespace. The result
// is a fixpoint: Preprocess(Preprocess(s)) == Preprocess(s).
func (t *Tables) Preprocess(s string) string {
	tr := normalizerPool.Get().(transform.Transformer)
	tr.Reset()
	folded, _, err := transform.String(tr, s)
	normalizerPool.Put(tr)
	if err != nil {
		// Transform failures leave the input usable as-is; matching on the
		// raw text beats dropping the message.
		folded = s
	}

	folded = strings.ToLower(t.foldHomoglyphs(folded))

	// Squash, collapse and strip feed each other: dropping punctuation can
	// merge two squashed runs back together ("aa!aa" -> "a!a" -> "aa"), and
	// squashing can shrink words into new spaced single-letter runs. Iterate
	// to a fixpoint; each pass only shrinks the string.
	for {
		prev := folded
		folded = squashRepeats(folded)
		folded = spacedLetters.ReplaceAllStringFunc(folded, stripSpaces)
		folded = stripNonWord(folded)
		if folded == prev {
			break
		}
	}
	return strings.TrimSpace(folded)
}

// squashRepeats collapses every run of an identical rune down to one
// occurrence. Linear scan; regexp backreferences are unavailable in RE2.
func squashRepeats(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// stripNonWord keeps ASCII letters, digits and whitespace, discarding
// everything else. Runs after folding, so any glyph worth keeping has
// already been mapped into ASCII.
func stripNonWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return b.String()
}
