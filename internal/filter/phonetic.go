package filter

import (
	"sort"
	"strings"
)

const phoneticKeyMax = 8

// PhoneticKey reduces text to a crude sound key: glyphs are folded to their
// canonical characters, common English spelling patterns are collapsed, and
// the interior consonants are sorted so that transpositions ("fcuk") land on
// the same key as the straight spelling. Keys are truncated to eight
// characters.
//
// Several of the spelling rules need one character of lookahead or
// lookbehind; Go's regexp package (RE2) has neither, so they are implemented
// as linear scans.
func (t *Tables) PhoneticKey(text string) string {
	s := strings.ToLower(text)
	s = t.NormalizeToBase(s)
	s = keepLetters(s)
	if s == "" {
		return ""
	}

	s = dropVowelH(s)
	s = dropSilentGH(s)
	s = strings.ReplaceAll(s, "ck", "k")
	s = hardC(s)
	s = strings.ReplaceAll(s, "ph", "f")
	s = strings.ReplaceAll(s, "qu", "kw")
	s = strings.ReplaceAll(s, "x", "ks")
	s = squashRepeats(s)
	s = strings.ReplaceAll(s, "sch", "sk")
	s = strings.ReplaceAll(s, "th", "t")
	s = silentPrefixes(s)
	s = softC(s)
	s = ghToG(s)
	s = chToK(s)

	if len(s) >= 4 {
		s = sortInterior(s)
	}
	if len(s) > phoneticKeyMax {
		s = s[:phoneticKeyMax]
	}
	return s
}

func keepLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// dropVowelH removes an 'h' that directly follows a vowel ("ah" -> "a").
func dropVowelH(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		if isVowel(s[i]) && i+1 < len(s) && s[i+1] == 'h' {
			i++
		}
	}
	return b.String()
}

// dropSilentGH removes "gh" when followed by i, e or y ("night" pattern).
func dropSilentGH(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 'g' && i+2 < len(s) && s[i+1] == 'h' {
			switch s[i+2] {
			case 'i', 'e', 'y':
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// hardC rewrites 'c' to 'k' unless followed by e, i or y.
func hardC(s string) string {
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] != 'c' {
			continue
		}
		if i+1 < len(b) {
			switch b[i+1] {
			case 'e', 'i', 'y':
				continue
			}
		}
		b[i] = 'k'
	}
	return string(b)
}

// silentPrefixes drops the silent consonant in kn-, gn-, pn- and wr- onsets
// and the trailing b of a final -mb.
func silentPrefixes(s string) string {
	switch {
	case strings.HasPrefix(s, "kn"), strings.HasPrefix(s, "gn"), strings.HasPrefix(s, "pn"):
		s = s[1:]
	case strings.HasPrefix(s, "wr"):
		s = s[1:]
	}
	if strings.HasSuffix(s, "mb") {
		s = s[:len(s)-1]
	}
	return s
}

// softC rewrites 'c' to 's' before e, i or y unless preceded by 's'.
func softC(s string) string {
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] != 'c' || i+1 >= len(b) {
			continue
		}
		switch b[i+1] {
		case 'e', 'i', 'y':
			if i == 0 || b[i-1] != 's' {
				b[i] = 's'
			}
		}
	}
	return string(b)
}

// ghToG collapses a remaining "gh" to 'g' unless preceded by 'f'.
func ghToG(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 'g' && i+1 < len(s) && s[i+1] == 'h' && (i == 0 || s[i-1] != 'f') {
			b.WriteByte('g')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// chToK collapses "ch" to 'k' unless preceded by 't'.
func chToK(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 'c' && i+1 < len(s) && s[i+1] == 'h' && (i == 0 || s[i-1] != 't') {
			b.WriteByte('k')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// sortInterior keeps the first and last characters anchored and sorts the
// characters between them, making the key insensitive to interior
// transpositions.
func sortInterior(s string) string {
	mid := []byte(s[1 : len(s)-1])
	sort.Slice(mid, func(i, j int) bool { return mid[i] < mid[j] })
	return s[:1] + string(mid) + s[len(s)-1:]
}
