package moderation

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// phraseMatcher finds blocked multi-word phrases with a single Aho-Corasick
// pass over the message. Matches are only accepted on word boundaries, so
// "kill yourself" does not fire inside "kill yourselves".
type phraseMatcher struct {
	phrases []string
	ac      *ahocorasick.AhoCorasick
}

func newPhraseMatcher(phrases []string) *phraseMatcher {
	m := &phraseMatcher{phrases: phrases}
	if len(phrases) == 0 {
		return m
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	ac := builder.Build(phrases)
	m.ac = &ac
	return m
}

// find returns the first phrase present in text on word boundaries.
func (m *phraseMatcher) find(text string) (string, bool) {
	if m.ac == nil {
		return "", false
	}
	for _, match := range m.ac.FindAll(text) {
		start, end := match.Start(), match.End()
		if start > 0 && isWordByte(text[start-1]) {
			continue
		}
		if end < len(text) && isWordByte(text[end]) {
			continue
		}
		return m.phrases[match.Pattern()], true
	}
	return "", false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
