package wordlist

import (
	"reflect"
	"testing"
)

func TestSplitTerms(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"space separated", "word1 word2 word3", []string{"word1", "word2", "word3"}},
		{"comma separated", "word1,word2,word3", []string{"word1", "word2", "word3"}},
		{"comma space", "word1, word2, word3", []string{"word1", "word2", "word3"}},
		{"mixed", "word1 word2,word3", []string{"word1", "word2", "word3"}},
		{"uppercase folded", "Word1 WORD2", []string{"word1", "word2"}},
		{"duplicates preserve first order", "b a b c a", []string{"b", "a", "c"}},
		{"special chars dropped without splitting", "word-one wo!rd2", []string{"wordone", "word2"}},
		{"extra whitespace", "  word1\t\nword2  ", []string{"word1", "word2"}},
		{"consecutive separators", "word1,,  ,word2", []string{"word1", "word2"}},
		{"empty", "", nil},
		{"only separators", " , , ", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitTerms(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitTerms(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestJoinTerms(t *testing.T) {
	got := JoinTerms([]string{"a", "b", "c"})
	if got != "a, b, c" {
		t.Errorf("JoinTerms = %q, want %q", got, "a, b, c")
	}
}
