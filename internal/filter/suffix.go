package filter

import "strings"

// suffixRule describes one strippable suffix: the minimum length the whole
// word must have for the suffix to be considered, and whole words that carry
// the suffix innocently.
type suffixRule struct {
	suffix     string
	minLen     int
	exceptions map[string]struct{}
}

var suffixRules = []suffixRule{
	{"ing", 4, set("ring", "king", "sing", "wing", "thing", "bring")},
	{"er", 3, set("her", "per", "over", "under")},
	{"ed", 3, set("red", "bed", "fed", "led", "wed")},
	{"es", 4, set("yes", "res", "des")},
	{"s", 3, set("is", "as", "us", "its", "this")},
	{"a", 4, set("banana", "area", "idea", "extra")},
}

// strippablePrefixes are removed from a candidate root before the final
// term lookup, so "unfucked" still resolves to its root.
var strippablePrefixes = []string{"re", "un", "de", "in", "pre", "pro"}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// suffixMatch strips known suffixes (and then known prefixes) from word and
// reports the banned term the remaining root equals, if any. Enabled by the
// WithSuffixRules option; stripping this aggressively is not safe for every
// deployment.
func (f *Filter) suffixMatch(word string) (string, bool) {
	for _, rule := range suffixRules {
		if len(word) < rule.minLen || !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		if _, exempt := rule.exceptions[word]; exempt {
			continue
		}
		root := strings.TrimSuffix(word, rule.suffix)
		if _, banned := f.terms[root]; banned {
			return root, true
		}
		for _, p := range strippablePrefixes {
			if strings.HasPrefix(root, p) && len(root) > len(p) {
				bare := root[len(p):]
				if _, banned := f.terms[bare]; banned {
					return bare, true
				}
			}
		}
	}
	return "", false
}
