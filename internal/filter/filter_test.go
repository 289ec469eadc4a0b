package filter

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestFilter(terms ...string) *Filter {
	return New(terms)
}

func TestDirectMatch(t *testing.T) {
	f := newTestFilter("fuck", "shit", "ass")

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"plain term", "fuck this", true},
		{"uppercase", "FUCK THIS", true},
		{"mixed case", "FuCk", true},
		{"clean message", "have a nice day", false},
		{"term inside safe words", "the massive passage", false},
		{"empty message", "", false},
		{"whitespace only", "   \t\n  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsBannedTerm(tt.message); got != tt.want {
				t.Errorf("ContainsBannedTerm(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestObfuscatedMatch(t *testing.T) {
	f := newTestFilter("fuck", "shit")

	tests := []struct {
		name    string
		message string
	}{
		{"leetspeak digits", "5h1t happens"},
		{"symbol substitution", "f@(k this"},
		{"repeated characters", "fuuuuuck"},
		{"spaced letters", "f u c k you"},
		{"zero-width space", "f​uck"},
		{"word joiner", "fu⁠ck"},
		{"soft hyphen", "fu­ck"},
		{"fullwidth forms", "ｆｕｃｋ"},
		{"cyrillic homoglyph", "fuсk"},
		{"mixed obfuscation", "F U с K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !f.ContainsBannedTerm(tt.message) {
				t.Errorf("ContainsBannedTerm(%q) = false, want true", tt.message)
			}
		})
	}
}

func TestSafeWordVeto(t *testing.T) {
	f := newTestFilter("ass")

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"assignment is safe", "please submit the assignment", false},
		{"classic is safe", "that film is a classic", false},
		{"assassin is safe", "the assassin vanished", false},
		{"bare term still flagged", "you ass", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsBannedTerm(tt.message); got != tt.want {
				t.Errorf("ContainsBannedTerm(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestSafeWordDoesNotVetoBannedWord(t *testing.T) {
	// A word present in both the safe set and the term set must still flag.
	f := newTestFilter("classic")
	if !f.ContainsBannedTerm("that film is a classic") {
		t.Error("banned word vetoed by its own safe-word entry")
	}
}

func TestContextWhitelistSuppression(t *testing.T) {
	f := newTestFilter("ass", "cunt", "cock", "hell")

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"embedded term in whitelisted compound", "the gamecock won", false},
		{"country", "my country is beautiful", false},
		{"peacock", "a peacock strutted by", false},
		{"cockpit", "the cockpit door was open", false},
		{"compound outside the whitelist", "that gamecocker cheated", true},
		{"bare term flagged", "go to hell", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsBannedTerm(tt.message); got != tt.want {
				t.Errorf("ContainsBannedTerm(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestRootWithTrailingResidue(t *testing.T) {
	f := newTestFilter("fuck")

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"suffix within residue", "those fuckers again", true},
		{"leet root with suffix", "fucker5", true},
		{"long trailing residue ignored", "fuckaroonies", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsBannedTerm(tt.message); got != tt.want {
				t.Errorf("ContainsBannedTerm(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestShortForms(t *testing.T) {
	f := newTestFilter("fuck")

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"bare short form", "fk", true},
		{"leet short form", "f1k", true},
		{"wtf alone", "wtf", true},
		{"short form inside sentence", "fk u", false},
		{"wtf inside sentence", "wtf is this", false},
		{"short form mid message", "well fk that plan", false},
		{"ordinary short word", "ok", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsBannedTerm(tt.message); got != tt.want {
				t.Errorf("ContainsBannedTerm(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestPhoneticFallback(t *testing.T) {
	f := newTestFilter("fuck")

	if !f.ContainsBannedTerm("phuck") {
		t.Error("phonetic respelling not caught")
	}
	if f.ContainsBannedTerm("pluck") {
		t.Error("pluck incorrectly flagged")
	}
}

func TestSuffixMatch(t *testing.T) {
	f := New([]string{"fuck"}, WithSuffixRules())

	tests := []struct {
		word     string
		wantTerm string
		want     bool
	}{
		{"refucks", "fuck", true},
		{"fucked", "fuck", true},
		{"trucks", "", false},
		{"rings", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			term, ok := f.suffixMatch(tt.word)
			if ok != tt.want || term != tt.wantTerm {
				t.Errorf("suffixMatch(%q) = (%q, %v), want (%q, %v)",
					tt.word, term, ok, tt.wantTerm, tt.want)
			}
		})
	}
}

func TestCustomSafeWords(t *testing.T) {
	plain := New([]string{"shit"})
	custom := New([]string{"shit"}, WithSafeWords("mishits"))

	msg := "three mishits in a row"
	if !plain.ContainsBannedTerm(msg) {
		t.Fatalf("base filter did not flag %q", msg)
	}
	if custom.ContainsBannedTerm(msg) {
		t.Errorf("custom safe word did not veto %q", msg)
	}
}

func TestEmptyTermSet(t *testing.T) {
	f := New(nil)
	for _, msg := range []string{"", "anything at all", "fuck"} {
		if f.ContainsBannedTerm(msg) {
			t.Errorf("filter with no terms flagged %q", msg)
		}
	}
}

func TestTermNormalization(t *testing.T) {
	f := New([]string{"  FUCK  ", "fuck", "", "   "})
	if got := f.Terms(); len(got) != 1 || got[0] != "fuck" {
		t.Errorf("Terms() = %v, want [fuck]", got)
	}
}

func TestMatchReportsTerm(t *testing.T) {
	f := newTestFilter("fuck", "shit")

	flagged, term := f.Match("what the 5h1t")
	if !flagged || term != "shit" {
		t.Errorf("Match = (%v, %q), want (true, shit)", flagged, term)
	}

	flagged, term = f.Match("all fine here")
	if flagged || term != "" {
		t.Errorf("Match = (%v, %q), want (false, \"\")", flagged, term)
	}
}

func TestVerdictCache(t *testing.T) {
	f := newTestFilter("fuck")

	msg := "a perfectly clean message"
	first := f.ContainsBannedTerm(msg)
	second := f.ContainsBannedTerm(msg)
	if first != second {
		t.Fatalf("verdict changed between calls: %v then %v", first, second)
	}

	hits, misses, computations := f.Stats()
	if computations != 1 {
		t.Errorf("computations = %d, want 1", computations)
	}
	if hits != 1 || misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", hits, misses)
	}
}

func TestCacheCachesNegativeVerdicts(t *testing.T) {
	f := newTestFilter("fuck")

	msg := "nothing wrong here"
	f.ContainsBannedTerm(msg)
	f.ContainsBannedTerm(msg)

	_, _, computations := f.Stats()
	if computations != 1 {
		t.Errorf("negative verdict recomputed: computations = %d, want 1", computations)
	}
}

func TestCacheEviction(t *testing.T) {
	c := newVerdictCache(3)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		c.put(k, verdict{})
	}
	if got := c.len(); got != 3 {
		t.Errorf("cache size = %d, want 3", got)
	}
}

func TestCacheUpdateDoesNotEvict(t *testing.T) {
	c := newVerdictCache(2)
	c.put("a", verdict{})
	c.put("b", verdict{})
	c.put("a", verdict{flagged: true})
	if got := c.len(); got != 2 {
		t.Errorf("cache size = %d, want 2", got)
	}
	if v, ok := c.get("a"); !ok || !v.flagged {
		t.Errorf("updated entry lost: %+v, %v", v, ok)
	}
}

func TestTestBatch(t *testing.T) {
	f := newTestFilter("fuck")

	in := []string{"hello", "fuck", "hello", "f u c k"}
	got := f.TestBatch(in)

	if len(got) != len(in) {
		t.Fatalf("TestBatch returned %d results, want %d", len(got), len(in))
	}
	want := []bool{false, true, false, true}
	for i, r := range got {
		if r.Message != in[i] {
			t.Errorf("result %d message = %q, want %q", i, r.Message, in[i])
		}
		if r.Flagged != want[i] {
			t.Errorf("result %d flagged = %v, want %v", i, r.Flagged, want[i])
		}
	}
}

func TestConcurrentUse(t *testing.T) {
	f := newTestFilter("fuck", "shit", "ass")
	messages := []string{
		"hello there", "5h1t", "f u c k", "nothing here",
		"the assignment", "fuuuck", "clean",
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				for _, m := range messages {
					f.ContainsBannedTerm(m)
				}
			}
		}()
	}
	wg.Wait()

	// Verdicts must be stable after the concurrent churn.
	if f.ContainsBannedTerm("hello there") {
		t.Error("clean message flagged after concurrent use")
	}
	if !f.ContainsBannedTerm("5h1t") {
		t.Error("obfuscated message not flagged after concurrent use")
	}
}

func TestWhitelistBudgetExpiry(t *testing.T) {
	// An already-expired budget skips every pattern, so whitelisted contexts
	// flag again.
	f := New([]string{"cock"}, WithWhitelistBudget(-1))

	if !f.ContainsBannedTerm("the gamecock won") {
		t.Error("expired whitelist budget still vetoed the match")
	}
}

func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}
	f := newTestFilter("fuck", "shit", "ass", "cunt", "bitch")

	messages := []string{
		"just a normal chat message about the weather",
		"5h1t",
		"f u c k this",
		"what a lovely day for a walk in the park",
	}

	start := time.Now()
	const rounds = 100
	for i := 0; i < rounds; i++ {
		for _, m := range messages {
			f.ContainsBannedTerm(m)
		}
	}
	per := time.Since(start) / (rounds * time.Duration(len(messages)))
	if per > 5*time.Millisecond {
		t.Errorf("average check took %v, want under 5ms", per)
	}
}

func BenchmarkCleanMessage(b *testing.B) {
	f := newTestFilter("fuck", "shit", "ass", "cunt", "bitch")
	msg := "just a normal chat message about the weather today"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.ContainsBannedTerm(msg)
	}
}

func BenchmarkObfuscatedMessage(b *testing.B) {
	f := newTestFilter("fuck", "shit", "ass", "cunt", "bitch")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Vary the message so the cache does not absorb the work.
		msg := "5h1t " + strings.Repeat("x", i%8)
		f.ContainsBannedTerm(msg)
	}
}
