package filter

// Expand enumerates candidate decodings of token by substituting every rune
// with each canonical character it could stand for, up to max results. The
// enumeration is depth-first over rune positions in candidate order, so the
// set produced for a given token and bound is deterministic. Runes with no
// registered substitution stand for themselves.
//
// The bound caps memory on adversarial input; a token whose full expansion
// exceeds it is only partially enumerated, which can miss matches. That is
// an accepted trade against unbounded growth.
func (t *Tables) Expand(token string, max int) map[string]struct{} {
	if token == "" || max <= 0 {
		return map[string]struct{}{}
	}

	runes := []rune(token)
	options := make([][]rune, len(runes))
	for i, r := range runes {
		options[i] = t.Candidates(r)
	}

	out := make(map[string]struct{})
	buf := make([]rune, len(runes))

	var walk func(pos int) bool
	walk = func(pos int) bool {
		if pos == len(runes) {
			out[string(buf)] = struct{}{}
			return len(out) < max
		}
		for _, c := range options[pos] {
			buf[pos] = c
			if !walk(pos + 1) {
				return false
			}
		}
		return true
	}
	walk(0)
	return out
}

// expandContains reports whether any bounded expansion of token is present
// in terms, without materializing the full candidate set.
func (t *Tables) expandContains(token string, max int, terms map[string]struct{}) (string, bool) {
	if token == "" || max <= 0 || len(terms) == 0 {
		return "", false
	}

	runes := []rune(token)
	options := make([][]rune, len(runes))
	for i, r := range runes {
		options[i] = t.Candidates(r)
	}

	buf := make([]rune, len(runes))
	seen := 0

	var walk func(pos int) (string, bool)
	walk = func(pos int) (string, bool) {
		if pos == len(runes) {
			seen++
			cand := string(buf)
			if _, ok := terms[cand]; ok {
				return cand, true
			}
			return "", false
		}
		for _, c := range options[pos] {
			buf[pos] = c
			if term, ok := walk(pos + 1); ok {
				return term, true
			}
			if seen >= max {
				break
			}
		}
		return "", false
	}
	return walk(0)
}
