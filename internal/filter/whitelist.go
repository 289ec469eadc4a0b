package filter

import (
	"log"
	"regexp"
	"strings"
	"time"
)

// defaultWhitelistBudget bounds the wall-clock time spent scanning whitelist
// patterns for a single message. On expiry the remaining patterns are
// skipped and the term is treated as not whitelisted.
const defaultWhitelistBudget = time.Second

// whitelistSources lists, per banned term, the contexts in which the term is
// innocent. A message matching any pattern for a term suppresses that term's
// match.
var whitelistSources = map[string][]string{
	"ass": {
		`\b(?:bad|smart|dumb|lazy|kick|hard|jack|wise)[a-z]*ass\b`,
		`\bass(?:ignment|ign|ista?nt|ess|essment|et|ets|ociate|ociation|ume|umption|ure|urance|embly|emble)[a-z]*\b`,
		`\b(?:cl|gl|gr|br|m|p|b|s|h)ass(?:es|y|ic|ical|ware|roots|age|enger)?\b`,
		`\bamb?assador\b`,
		`\bcassette\b`,
		`\bcompass(?:es|ion|ionate)?\b`,
		`\bembassy\b`,
		`\bpassage\b`,
		`\bpassword\b`,
	},
	"cunt": {
		`\bcount(?:s|ry|ries|ry's|er|ers|ing|ed|y|ies|less|down|erpart)?\b`,
		`\bencounter(?:s|ed|ing)?\b`,
		`\baccount(?:s|ed|ing|ant|ants)?\b`,
		`\bscunthorpe\b`,
	},
	"cock": {
		`\bcock(?:pit|tail|tails|atoo|atiel|er|ers|ney|roach|roaches)\b`,
		`\b(?:pea|game|shuttle|stop|hay|wood)cocks?\b`,
		`\bcockles?\b`,
	},
	"hell": {
		`\bhell(?:o|os)\b`,
		`\bs(?:ea)?shells?\b`,
		`\bshell(?:s|ed|ing|fish)?\b`,
		`\bhellen(?:ic|istic)\b`,
	},
}

type whitelistRule struct {
	re      *regexp.Regexp
	literal string // case-insensitive fallback when re failed to compile
}

func (r whitelistRule) match(message string) bool {
	if r.re != nil {
		return r.re.MatchString(message)
	}
	return r.literal != "" && strings.Contains(strings.ToLower(message), r.literal)
}

// contextWhitelist gates matches on terms that commonly appear inside
// innocent words. It is read-only after construction.
type contextWhitelist struct {
	rules  map[string][]whitelistRule
	budget time.Duration
}

var metaChars = strings.NewReplacer(
	`\b`, "", `\`, "", `(`, "", `)`, "", `[`, "", `]`, "",
	`?:`, "", `?`, "", `*`, "", `+`, "", `|`, " ", `^`, "", `$`, "",
)

func newContextWhitelist(sources map[string][]string, budget time.Duration) *contextWhitelist {
	w := &contextWhitelist{
		rules:  make(map[string][]whitelistRule, len(sources)),
		budget: budget,
	}
	for term, patterns := range sources {
		for _, p := range patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				// Degrade to a literal scan of the pattern text rather than
				// losing the rule or failing construction.
				log.Printf("filter: whitelist pattern %q for %q: %v, using literal fallback", p, term, err)
				w.rules[term] = append(w.rules[term], whitelistRule{
					literal: strings.ToLower(strings.TrimSpace(metaChars.Replace(p))),
				})
				continue
			}
			w.rules[term] = append(w.rules[term], whitelistRule{re: re})
		}
	}
	return w
}

// Allows reports whether the message provides an innocent context for term.
// Pattern scanning stops once the budget is exhausted; a timed-out scan
// never vetoes a match.
func (w *contextWhitelist) Allows(message, term string) bool {
	rules, ok := w.rules[term]
	if !ok {
		return false
	}
	start := time.Now()
	for _, r := range rules {
		if time.Since(start) > w.budget {
			log.Printf("filter: whitelist scan for %q exceeded %v, skipping remaining patterns", term, w.budget)
			return false
		}
		if r.match(message) {
			return true
		}
	}
	return false
}
