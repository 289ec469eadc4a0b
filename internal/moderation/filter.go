// Package moderation provides content screening for chat messages. It layers
// spam heuristics, an exact word and phrase blocklist, and an
// obfuscation-resistant term matcher behind a single Check call, and is the
// unit the moderator service instantiates per room.
package moderation

import (
	"strings"
	"unicode"

	"github.com/swearguard/swearguard/internal/filter"
)

// FilterResult is the outcome of a moderation check.
type FilterResult struct {
	Blocked bool
	Reason  string // "blocked_keyword", "blocked_phrase" or "spam_pattern"
	Term    string // the term, phrase or pattern name that fired
}

// Filter screens messages against a blocklist. Single words go through the
// obfuscation-resistant engine; multi-word entries are matched as literal
// phrases. A Filter is immutable after construction and safe for concurrent
// use.
type Filter struct {
	words   map[string]struct{}
	phrases []string

	engine  *filter.Filter
	matcher *phraseMatcher
	spam    *spamDetector
	lang    *languageGate // nil when the gate is disabled
}

// Option configures a Filter at construction.
type Option func(*options)

type options struct {
	spamCfg       SpamConfig
	engineOpts    []filter.Option
	lang          *languageGate
	extraSafe     []string
	suffixEnabled bool
}

// WithSpamConfig overrides the spam heuristic thresholds.
func WithSpamConfig(cfg SpamConfig) Option {
	return func(o *options) { o.spamCfg = cfg }
}

// WithLanguageGate skips the fuzzy matching stages for messages that are
// confidently not English, cutting false positives on foreign-language text.
// Exact word and phrase matches still apply. The detector models are loaded
// once per Filter; share the Filter rather than rebuilding it per message.
func WithLanguageGate(minEnglish float64) Option {
	return func(o *options) { o.lang = newLanguageGate(minEnglish) }
}

// WithSafeWords adds words that veto fuzzy matches on messages containing
// them.
func WithSafeWords(words ...string) Option {
	return func(o *options) { o.extraSafe = append(o.extraSafe, words...) }
}

// WithSuffixStripping enables the engine's suffix rules.
func WithSuffixStripping() Option {
	return func(o *options) { o.suffixEnabled = true }
}

// NewFilter creates a Filter with the built-in default blocklist.
func NewFilter(opts ...Option) *Filter {
	return NewFilterWithTerms(defaultBlocklist(), opts...)
}

// NewFilterWithTerms creates a Filter for a custom blocklist. Entries
// containing whitespace are treated as phrases, everything else as words.
// Empty and whitespace-only entries are dropped.
func NewFilterWithTerms(terms []string, opts ...Option) *Filter {
	var o options
	o.spamCfg = DefaultSpamConfig()
	for _, opt := range opts {
		opt(&o)
	}

	f := &Filter{
		words: make(map[string]struct{}),
		spam:  newSpamDetector(o.spamCfg),
		lang:  o.lang,
	}

	var words []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if strings.ContainsAny(t, " \t") {
			f.phrases = append(f.phrases, t)
			continue
		}
		if _, dup := f.words[t]; !dup {
			f.words[t] = struct{}{}
			words = append(words, t)
		}
	}

	engineOpts := o.engineOpts
	if len(o.extraSafe) > 0 {
		engineOpts = append(engineOpts, filter.WithSafeWords(o.extraSafe...))
	}
	if o.suffixEnabled {
		engineOpts = append(engineOpts, filter.WithSuffixRules())
	}
	f.engine = filter.New(words, engineOpts...)
	f.matcher = newPhraseMatcher(f.phrases)
	return f
}

// Check screens text and reports the first rule that fires. Stages run
// cheapest first: spam heuristics, phrase scan, exact words, then the
// obfuscation engine. The engine stage is skipped for confidently
// non-English text when the language gate is enabled.
func (f *Filter) Check(text string) FilterResult {
	if strings.TrimSpace(text) == "" {
		return FilterResult{}
	}

	if r := f.spam.check(text); r.Blocked {
		return r
	}

	if phrase, ok := f.matcher.find(text); ok {
		return FilterResult{Blocked: true, Reason: "blocked_phrase", Term: phrase}
	}

	for _, tok := range tokenizePlain(text) {
		if _, ok := f.words[tok]; ok {
			return FilterResult{Blocked: true, Reason: "blocked_keyword", Term: tok}
		}
	}

	if f.lang != nil && !f.lang.likelyEnglish(text) {
		return FilterResult{}
	}

	if blocked, term := f.engine.Match(text); blocked {
		return FilterResult{Blocked: true, Reason: "blocked_keyword", Term: term}
	}
	return FilterResult{}
}

// EngineStats exposes the engine's cache counters for metrics scraping.
func (f *Filter) EngineStats() (hits, misses, computations int64) {
	return f.engine.Stats()
}

// tokenizePlain lowercases text and splits it on every non-alphanumeric
// character.
func tokenizePlain(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
