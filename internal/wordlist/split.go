// Package wordlist provides PostgreSQL-backed storage for per-room banned
// terms and safe words, plus parsing helpers for operator-supplied term
// lists.
package wordlist

import "strings"

// SplitTerms splits operator input into individual terms. It accepts comma
// separated, space separated, or mixed input:
//
//	"word1 word2 word3"  -> ["word1", "word2", "word3"]
//	"word1,word2,word3"  -> ["word1", "word2", "word3"]
//	"word1, word2 word3" -> ["word1", "word2", "word3"]
//
// Terms are lowercased, stripped of characters outside [a-z0-9], and
// deduplicated preserving first-seen order.
func SplitTerms(input string) []string {
	input = strings.ToLower(input)

	var terms []string
	seen := make(map[string]struct{})

	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		term := b.String()
		b.Reset()
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',', r == ' ', r == '\t', r == '\n', r == '\r':
			flush()
		default:
			// Drop other characters without splitting the term.
		}
	}
	flush()

	return terms
}

// JoinTerms renders a term list back into the canonical comma separated
// form used by the admin API.
func JoinTerms(terms []string) string {
	return strings.Join(terms, ", ")
}
