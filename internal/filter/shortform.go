package filter

import "strings"

// shortForms lists abbreviated spellings of at most three characters that
// are flagged only when they make up the entire message ("fk" alone).
// Tokens this short embedded in longer messages are too ambiguous to act
// on, so they get their own exact-match stage gated on message length.
var shortForms = map[string]struct{}{
	"fk":  {},
	"fu":  {},
	"fck": {},
	"fuk": {},
	"fkn": {},
	"fkd": {},
	"sht": {},
	"cnt": {},
	"dck": {},
	"btc": {},
	"wtf": {},
	"stf": {},
}

// leetChars are the digits and symbols stripped from a token before the
// second short-form probe, so "f*k" and "f1k" reduce to "fk".
const leetChars = "1378245609@#$+*"

func stripLeetChars(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(leetChars, r) {
			return -1
		}
		return r
	}, s)
}
