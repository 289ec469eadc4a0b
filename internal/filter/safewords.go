package filter

// commonSafeWords vetoes whole messages containing well-known innocent words
// that embed banned substrings, short-circuiting the pipeline before the
// fuzzy stages can misfire on them. A word that is itself banned never
// vetoes.
var commonSafeWords = []string{
	"assassin", "assassinate", "assassination",
	"assignment", "assign", "assignee",
	"assistant", "assistance", "assist",
	"associate", "association",
	"assume", "assumption", "assure", "assurance",
	"assembly", "assemble", "assess", "assessment", "asset", "assets",
	"bass", "brass", "class", "classic", "classical", "classy",
	"compass", "compassion", "embassy", "glass", "grass", "harass",
	"mass", "massive", "molasses", "passage", "passenger", "password",
	"pass", "passed", "passing",
	"cassette", "ambassador",
	"country", "countries", "county", "counter", "counters", "count",
	"counting", "counted", "discount", "encounter", "account", "accounting",
	"accountant",
	"cockpit", "cocktail", "cocktails", "peacock", "cockatoo", "cockney",
	"cockroach", "shuttlecock",
	"hello", "shell", "shells", "shellfish", "seashell", "shelter",
	"grape", "grapes", "drape", "drapes", "scrape", "scraped", "scraping",
	"scunthorpe", "mishit", "therapist", "therapists", "analysis", "canal", "japan",
	"shitake", "mushroom", "title", "butter", "button", "buttress",
	"saturday", "dickens", "dickinson", "hancock", "babcock",
	"nightingale", "matsushita",
}

func buildSafeWordSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(commonSafeWords)+len(extra))
	for _, w := range commonSafeWords {
		set[w] = struct{}{}
	}
	for _, w := range extra {
		if w = normalizeTerm(w); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
