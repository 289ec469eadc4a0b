package filter

import (
	"strings"
	"sync/atomic"
	"time"
)

// Filter matches messages against a fixed banned-term set. Instances are
// immutable after construction apart from the internal verdict cache, so a
// single Filter is safe for concurrent use. Term changes are handled by
// building a replacement instance.
type Filter struct {
	tables    *Tables
	terms     map[string]struct{}
	termList  []string // construction order, for deterministic reporting
	phonetic  map[string]string
	safeWords map[string]struct{}
	whitelist *contextWhitelist
	cache     *verdictCache

	rawCap         int
	segCap         int
	useSuffixRules bool

	// hits and misses count cache outcomes; computations counts full
	// pipeline runs. Exposed through Stats.
	hits, misses, computations atomic.Int64
}

// Option configures a Filter at construction.
type Option func(*config)

type config struct {
	tables          *Tables
	safeWords       []string
	cacheSize       int
	whitelistBudget time.Duration
	suffixRules     bool
}

// WithTables substitutes a custom table set; the default is the shared
// process-wide one.
func WithTables(t *Tables) Option {
	return func(c *config) { c.tables = t }
}

// WithSafeWords adds words to the built-in safe-word set. A message
// containing any safe word (that is not itself banned) is never flagged.
func WithSafeWords(words ...string) Option {
	return func(c *config) { c.safeWords = append(c.safeWords, words...) }
}

// WithCacheSize overrides the verdict cache bound.
func WithCacheSize(n int) Option {
	return func(c *config) { c.cacheSize = n }
}

// WithWhitelistBudget overrides the wall-clock budget for context-whitelist
// scans.
func WithWhitelistBudget(d time.Duration) Option {
	return func(c *config) { c.whitelistBudget = d }
}

// WithSuffixRules enables suffix stripping, so "fuckers" resolves to its
// root. Off by default: the stripping rules trade precision for recall.
func WithSuffixRules() Option {
	return func(c *config) { c.suffixRules = true }
}

// New builds a Filter for the given banned terms. Terms are lowercased and
// deduplicated; empty terms are dropped. A Filter with no terms flags
// nothing.
func New(terms []string, opts ...Option) *Filter {
	cfg := config{
		cacheSize:       DefaultCacheSize,
		whitelistBudget: defaultWhitelistBudget,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tables == nil {
		cfg.tables = DefaultTables()
	}

	f := &Filter{
		tables:         cfg.tables,
		terms:          make(map[string]struct{}, len(terms)),
		phonetic:       make(map[string]string, len(terms)),
		safeWords:      buildSafeWordSet(cfg.safeWords),
		whitelist:      newContextWhitelist(whitelistSources, cfg.whitelistBudget),
		cache:          newVerdictCache(cfg.cacheSize),
		rawCap:         RawExpansionCap,
		segCap:         SegmentExpansionCap,
		useSuffixRules: cfg.suffixRules,
	}
	for _, t := range terms {
		t = normalizeTerm(t)
		if t == "" {
			continue
		}
		if _, dup := f.terms[t]; dup {
			continue
		}
		f.terms[t] = struct{}{}
		f.termList = append(f.termList, t)
		f.phonetic[t] = cfg.tables.PhoneticKey(t)
	}
	return f
}

func normalizeTerm(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// Terms returns the banned terms in construction order.
func (f *Filter) Terms() []string {
	out := make([]string, len(f.termList))
	copy(out, f.termList)
	return out
}

// ContainsBannedTerm reports whether the message contains any banned term,
// disguised or not.
func (f *Filter) ContainsBannedTerm(message string) bool {
	flagged, _ := f.Match(message)
	return flagged
}

// Match is ContainsBannedTerm plus the term that fired. The term is empty
// for clean messages. Verdicts are cached per raw message; concurrent
// callers may race to compute the same verdict, which is harmless because
// the pipeline is deterministic.
func (f *Filter) Match(message string) (bool, string) {
	if v, ok := f.cache.get(message); ok {
		f.hits.Add(1)
		return v.flagged, v.term
	}
	f.misses.Add(1)
	f.computations.Add(1)
	v := f.match(message)
	f.cache.put(message, v)
	return v.flagged, v.term
}

// BatchResult pairs an input message with its verdict, in input order.
type BatchResult struct {
	Message string
	Flagged bool
}

// TestBatch evaluates every message and returns one result per input, in
// input order. Duplicate inputs get duplicate results.
func (f *Filter) TestBatch(messages []string) []BatchResult {
	out := make([]BatchResult, len(messages))
	for i, m := range messages {
		out[i] = BatchResult{Message: m, Flagged: f.ContainsBannedTerm(m)}
	}
	return out
}

// Stats reports cache hit/miss counts and full pipeline runs since
// construction.
func (f *Filter) Stats() (hits, misses, computations int64) {
	return f.hits.Load(), f.misses.Load(), f.computations.Load()
}

// match runs the staged pipeline. Stages are ordered cheap-first and each
// returns as soon as it has a definitive answer.
func (f *Filter) match(message string) verdict {
	if message == "" || len(f.terms) == 0 {
		return verdict{}
	}

	// Raw-token expansion: decode glyph substitutions on the unprocessed
	// tokens, before preprocessing can strip the evidence.
	for _, tok := range strings.Fields(message) {
		if term, ok := f.tables.expandContains(tok, f.rawCap, f.terms); ok {
			return verdict{flagged: true, term: term}
		}
	}

	normalized := f.tables.Preprocess(message)
	words := strings.Fields(normalized)

	// Safe-word veto: a recognized innocent word anywhere in the message
	// clears the whole message, unless that word is itself banned.
	for _, w := range words {
		if _, safe := f.safeWords[w]; !safe {
			continue
		}
		if _, banned := f.terms[w]; !banned {
			return verdict{}
		}
	}

	// Direct match on normalized tokens. A whitelist veto suppresses only
	// this token; later tokens and stages still run.
	for _, w := range words {
		if _, banned := f.terms[w]; banned && !f.whitelist.Allows(message, w) {
			return verdict{flagged: true, term: w}
		}
	}

	// Root-in-word: slide a term-sized window over each token and expand the
	// segment. Only windows leaving at most three trailing characters count,
	// so "fuckers" matches but "assignment" does not.
	for _, w := range words {
		if term, ok := f.rootMatch(message, w); ok {
			return verdict{flagged: true, term: term}
		}
		if f.useSuffixRules {
			if term, ok := f.suffixMatch(w); ok {
				return verdict{flagged: true, term: term}
			}
		}
	}

	// Short forms fire only when the whole message is a single short token.
	// "wtf" on its own is an expletive; "wtf" inside a sentence is too
	// ambiguous to flag. Exact probe first, then once more with leet
	// characters stripped.
	if len(words) == 1 {
		w := words[0]
		if len(w) <= 3 {
			if _, ok := shortForms[w]; ok {
				return verdict{flagged: true, term: w}
			}
		}
		if stripped := stripLeetChars(w); stripped != w && len(stripped) <= 3 {
			if _, ok := shortForms[stripped]; ok {
				return verdict{flagged: true, term: stripped}
			}
		}
	}

	// Phonetic fallback over the whole normalized message.
	if msgKey := f.tables.PhoneticKey(normalized); msgKey != "" {
		for _, term := range f.termList {
			key := f.phonetic[term]
			if key == "" || !strings.Contains(msgKey, key) {
				continue
			}
			if !f.whitelist.Allows(message, term) {
				return verdict{flagged: true, term: term}
			}
		}
	}

	return verdict{}
}

// rootMatch scans word for an embedded banned term with at most three
// trailing characters after it. Terms shorter than three characters are
// excluded; they embed in too many innocent words.
func (f *Filter) rootMatch(message, word string) (string, bool) {
	for _, term := range f.termList {
		if len(term) < 3 || len(word) < len(term) {
			continue
		}
		single := map[string]struct{}{term: {}}
		for start := 0; start+len(term) <= len(word); start++ {
			if len(word)-(start+len(term)) > 3 {
				continue
			}
			seg := word[start : start+len(term)]
			if _, ok := f.tables.expandContains(seg, f.segCap, single); !ok {
				continue
			}
			if !f.whitelist.Allows(message, term) {
				return term, true
			}
		}
	}
	return "", false
}
