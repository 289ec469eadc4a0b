// Package filter implements the obfuscation-resistant banned-term matcher
// used by the moderation service. It detects disguised terms (homoglyphs,
// leetspeak, zero-width separators, repeated characters, spaced-out letters,
// phonetic misspellings) while suppressing false positives on legitimate
// words that merely contain a banned substring.
package filter

import (
	"log"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Expansion and cache bounds. The two expansion caps are kept as independent
// knobs: whole raw tokens get a larger budget than the per-window segments
// scanned inside the root+suffix stage.
const (
	// RawExpansionCap bounds variant expansion of a whole unprocessed token.
	RawExpansionCap = 50000

	// SegmentExpansionCap bounds variant expansion of a substring window.
	SegmentExpansionCap = 10000

	// DefaultCacheSize is the verdict cache bound per filter instance.
	DefaultCacheSize = 1000
)

// substitutionEntry binds a canonical character to the glyphs that can
// impersonate it. Entries are kept in a slice, not a map, because the
// normalization map resolves ambiguous glyphs first-registered-wins: the
// iteration order (a-z, A-Z, 0-9) is part of the observable behavior.
type substitutionEntry struct {
	base     rune
	variants []string
}

// Tables is the immutable character-table set shared by all filter instances.
// It is built once and never mutated afterwards, so it is safe for concurrent
// use without locking.
type Tables struct {
	subs []substitutionEntry

	// norm maps every registered glyph form (including its simple upper and
	// lower case foldings) to the canonical lowercase character it was first
	// registered under.
	norm map[string]rune

	// reverse maps a single glyph rune to every canonical character it could
	// stand for, in registration order. Multi-rune variants ("()", "vv") do
	// not participate: expansion walks input rune by rune.
	reverse map[rune][]rune

	// homoglyphs maps cross-script lookalike runes to their Latin base.
	homoglyphs map[rune]rune

	// baseReplacer rewrites registered glyph forms to their canonical
	// character, longest form first. Used by the phonetic folder.
	baseReplacer *strings.Replacer
}

var (
	defaultTablesOnce sync.Once
	defaultTables     *Tables
)

// DefaultTables returns the process-wide table set, building it on first use.
func DefaultTables() *Tables {
	defaultTablesOnce.Do(func() {
		defaultTables = NewTables()
	})
	return defaultTables
}

// NewTables builds the full table set from the built-in substitution data.
// Entries with empty variant lists are skipped (and logged) rather than
// aborting construction.
func NewTables() *Tables {
	subs := buildSubstitutionEntries()

	t := &Tables{
		norm:       make(map[string]rune),
		reverse:    make(map[rune][]rune),
		homoglyphs: homoglyphTable,
	}

	for _, e := range subs {
		if len(e.variants) == 0 {
			log.Printf("filter: substitution entry %q has no variants, skipping", e.base)
			continue
		}
		e.variants = dedupeSorted(e.variants)
		t.subs = append(t.subs, e)
	}

	canon := func(r rune) rune { return unicode.ToLower(r) }

	for _, e := range t.subs {
		base := canon(e.base)
		for _, v := range e.variants {
			for _, form := range caseForms(v) {
				if _, seen := t.norm[form]; !seen {
					t.norm[form] = base
				}
				r, single := singleRune(form)
				if !single {
					continue
				}
				if !containsRune(t.reverse[r], base) {
					t.reverse[r] = append(t.reverse[r], base)
				}
			}
		}
	}

	t.baseReplacer = buildBaseReplacer(t.norm)
	return t
}

// Candidates returns the canonical characters the rune could stand for.
// A rune with no registered substitution stands only for itself.
func (t *Tables) Candidates(r rune) []rune {
	if c, ok := t.reverse[r]; ok {
		return c
	}
	return []rune{r}
}

// NormalizeToBase rewrites every registered glyph form in s to its canonical
// character, longest form first. The result is not lowercased beyond what the
// registered forms cover.
func (t *Tables) NormalizeToBase(s string) string {
	return t.baseReplacer.Replace(s)
}

// foldHomoglyphs maps cross-script lookalikes to their Latin base,
// character by character. Unmapped runes pass through unchanged.
func (t *Tables) foldHomoglyphs(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if mapped, ok := t.homoglyphs[r]; ok {
			b.WriteRune(mapped)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dedupeSorted removes duplicates and orders variants by length ascending,
// then lexically. Longest-match construction elsewhere depends on this order
// being deterministic.
func dedupeSorted(variants []string) []string {
	seen := make(map[string]struct{}, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// caseForms returns the variant plus its simple lower and upper foldings,
// deduplicated, in that fixed order.
func caseForms(v string) []string {
	forms := []string{v}
	if l := strings.ToLower(v); l != v {
		forms = append(forms, l)
	}
	if u := strings.ToUpper(v); u != v && u != forms[len(forms)-1] {
		forms = append(forms, u)
	}
	return forms
}

func singleRune(s string) (rune, bool) {
	rs := []rune(s)
	if len(rs) != 1 {
		return 0, false
	}
	return rs[0], true
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// buildBaseReplacer creates the longest-form-first glyph-to-canonical
// rewriter. Identity pairs are dropped; they would be no-ops.
func buildBaseReplacer(norm map[string]rune) *strings.Replacer {
	type pair struct {
		from string
		to   string
	}
	pairs := make([]pair, 0, len(norm))
	for form, base := range norm {
		to := string(base)
		if form == to {
			continue
		}
		pairs = append(pairs, pair{from: form, to: to})
	}
	// strings.Replacer tries patterns in argument order at each position, so
	// longest-first ordering gives longest-match semantics. The lexical
	// tie-break keeps construction deterministic.
	sort.Slice(pairs, func(i, j int) bool {
		if len(pairs[i].from) != len(pairs[j].from) {
			return len(pairs[i].from) > len(pairs[j].from)
		}
		return pairs[i].from < pairs[j].from
	})
	args := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		args = append(args, p.from, p.to)
	}
	return strings.NewReplacer(args...)
}
