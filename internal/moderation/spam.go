package moderation

import (
	"regexp"
	"strings"
	"unicode"
)

// Compiled once at package init and reused for every call, so they are safe
// and cheap under concurrency.
var (
	// urlPattern matches http/https URLs, www. URLs, and bare domains on
	// common TLDs. The bare-domain variant requires a trailing "/" to avoid
	// false positives on version strings like "v2.0" or decimals like "3.14".
	urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\S+\.(com|net|org|io|co|xyz|info|biz|ru|cn|tk|ml|ga|cf)/\S*)`)

	// phonePattern matches common phone number layouts such as
	// +1-555-123-4567, (555) 123-4567 and 555.123.4567. Anchored to
	// whitespace so digit runs inside ordinary words do not fire.
	phonePattern = regexp.MustCompile(`(?:^|\s)(\+?\d{1,3}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}(?:\s|$)`)

	// mentionPattern matches @-handles for the mention-flood check.
	mentionPattern = regexp.MustCompile(`@\w+`)
)

// SpamConfig holds the spam heuristic thresholds.
type SpamConfig struct {
	// CharFlood is the run length of identical characters that counts as
	// flooding.
	CharFlood int
	// WordFlood is the number of consecutive repeats of one word that counts
	// as flooding.
	WordFlood int
	// MentionFlood is the number of @-mentions in a single message that
	// counts as flooding. Zero disables the check.
	MentionFlood int
	// BlockURLs and BlockPhones toggle the link and phone number checks.
	BlockURLs   bool
	BlockPhones bool
}

// DefaultSpamConfig returns the thresholds used in production rooms.
func DefaultSpamConfig() SpamConfig {
	return SpamConfig{
		CharFlood:    5,
		WordFlood:    3,
		MentionFlood: 6,
		BlockURLs:    true,
		BlockPhones:  true,
	}
}

type spamRule struct {
	name  string
	match func(string) bool
}

// spamDetector applies the configured heuristics in order; the first match
// wins.
type spamDetector struct {
	rules []spamRule
}

func newSpamDetector(cfg SpamConfig) *spamDetector {
	var rules []spamRule
	if cfg.BlockURLs {
		rules = append(rules, spamRule{"url", urlPattern.MatchString})
	}
	if cfg.BlockPhones {
		rules = append(rules, spamRule{"phone", phonePattern.MatchString})
	}
	if cfg.CharFlood > 1 {
		rules = append(rules, spamRule{"char_flood", func(text string) bool {
			return hasCharFlood(text, cfg.CharFlood)
		}})
	}
	if cfg.WordFlood > 1 {
		rules = append(rules, spamRule{"word_flood", func(text string) bool {
			return hasWordFlood(text, cfg.WordFlood)
		}})
	}
	if cfg.MentionFlood > 0 {
		rules = append(rules, spamRule{"mention_flood", func(text string) bool {
			return len(mentionPattern.FindAllString(text, cfg.MentionFlood)) >= cfg.MentionFlood
		}})
	}
	return &spamDetector{rules: rules}
}

func (d *spamDetector) check(text string) FilterResult {
	for _, r := range d.rules {
		if r.match(text) {
			return FilterResult{Blocked: true, Reason: "spam_pattern", Term: r.name}
		}
	}
	return FilterResult{}
}

// hasCharFlood reports a run of threshold or more identical characters.
// Go's regexp package (RE2) does not support backreferences, so this is
// implemented as a simple linear scan.
func hasCharFlood(text string, threshold int) bool {
	count := 1
	prev := rune(-1)
	for _, r := range text {
		if r == prev {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 1
			prev = r
		}
	}
	return false
}

// hasWordFlood reports threshold or more consecutive occurrences of the same
// word, case-insensitive. Implemented as a token scan for the same RE2
// reason as hasCharFlood.
func hasWordFlood(text string, threshold int) bool {
	words := strings.FieldsFunc(text, unicode.IsSpace)
	if len(words) < threshold {
		return false
	}

	count := 1
	prev := ""
	for _, w := range words {
		lower := strings.ToLower(w)
		if lower == prev {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 1
			prev = lower
		}
	}
	return false
}
