package filter

import "unicode"

// Styled Unicode alphabets (Mathematical Alphanumeric Symbols, Enclosed
// Alphanumerics, Halfwidth and Fullwidth Forms) are contiguous 26-letter
// blocks, so variants for them are generated rather than written out.
// A handful of letters predate the math block and live in Letterlike
// Symbols; letterlikeHoles patches those reserved slots.

var mathLowerBases = []rune{
	0x1D41A, // bold
	0x1D44E, // italic
	0x1D482, // bold italic
	0x1D4B6, // script
	0x1D4EA, // bold script
	0x1D51E, // fraktur
	0x1D552, // double-struck
	0x1D586, // bold fraktur
	0x1D5BA, // sans-serif
	0x1D5EE, // sans-serif bold
	0x1D622, // sans-serif italic
	0x1D656, // sans-serif bold italic
	0x1D68A, // monospace
}

var mathUpperBases = []rune{
	0x1D400, // bold
	0x1D434, // italic
	0x1D468, // bold italic
	0x1D49C, // script
	0x1D4D0, // bold script
	0x1D504, // fraktur
	0x1D538, // double-struck
	0x1D56C, // bold fraktur
	0x1D5A0, // sans-serif
	0x1D5D4, // sans-serif bold
	0x1D608, // sans-serif italic
	0x1D63C, // sans-serif bold italic
	0x1D670, // monospace
}

// letterlikeHoles maps reserved math-block code points to the Letterlike
// Symbols characters that occupy them semantically.
var letterlikeHoles = map[rune]rune{
	0x1D455: 0x210E, // italic small h
	0x1D4BA: 0x212F, // script small e
	0x1D4BC: 0x210A, // script small g
	0x1D4C4: 0x2134, // script small o
	0x1D49D: 0x212C, // script capital B
	0x1D4A0: 0x2130, // script capital E
	0x1D4A1: 0x2131, // script capital F
	0x1D4A3: 0x210B, // script capital H
	0x1D4A4: 0x2110, // script capital I
	0x1D4A7: 0x2112, // script capital L
	0x1D4A8: 0x2133, // script capital M
	0x1D4AD: 0x211B, // script capital R
	0x1D506: 0x212D, // fraktur capital C
	0x1D50B: 0x210C, // fraktur capital H
	0x1D50C: 0x2111, // fraktur capital I
	0x1D512: 0x211C, // fraktur capital R
	0x1D51C: 0x2128, // fraktur capital Z
	0x1D53A: 0x2102, // double-struck capital C
	0x1D53F: 0x210D, // double-struck capital H
	0x1D545: 0x2115, // double-struck capital N
	0x1D547: 0x2119, // double-struck capital P
	0x1D548: 0x211A, // double-struck capital Q
	0x1D549: 0x211D, // double-struck capital R
	0x1D551: 0x2124, // double-struck capital Z
}

func patched(r rune) rune {
	if real, ok := letterlikeHoles[r]; ok {
		return real
	}
	return r
}

// styledLowerVariants generates every styled form of the i-th lowercase
// letter (0 = 'a').
func styledLowerVariants(i int) []string {
	out := []string{
		string(rune(0x24D0 + i)), // circled small
		string(rune(0xFF41 + i)), // fullwidth small
		string(rune(0x249C + i)), // parenthesized small
	}
	for _, base := range mathLowerBases {
		out = append(out, string(patched(base+rune(i))))
	}
	return out
}

// styledUpperVariants generates every styled form of the i-th capital letter.
// The enclosed capitals (squared, negative circled, negative squared) exist
// only in uppercase.
func styledUpperVariants(i int) []string {
	out := []string{
		string(rune(0x24B6 + i)),  // circled capital
		string(rune(0xFF21 + i)),  // fullwidth capital
		string(rune(0x1F130 + i)), // squared capital
		string(rune(0x1F150 + i)), // negative circled capital
		string(rune(0x1F170 + i)), // negative squared capital
	}
	for _, base := range mathUpperBases {
		out = append(out, string(patched(base+rune(i))))
	}
	return out
}

// styledDigitVariants generates styled forms of the digit d.
func styledDigitVariants(d int) []string {
	out := []string{
		string(rune(0xFF10 + d)), // fullwidth
	}
	if d == 0 {
		out = append(out, "⓪") // circled zero sits apart from 1-9
	} else {
		out = append(out, string(rune(0x2460+d-1))) // circled
	}
	for _, base := range []rune{
		0x1D7CE, // bold
		0x1D7D8, // double-struck
		0x1D7E2, // sans-serif
		0x1D7EC, // sans-serif bold
		0x1D7F6, // monospace
	} {
		out = append(out, string(base+rune(d)))
	}
	return out
}

// leetLower holds the hand-curated confusables per lowercase letter: ASCII
// leet, symbols, accented Latin, Greek and Cyrillic lookalikes, IPA and
// small-caps forms. Multi-character sequences ("()", "vv") are folded by the
// normalization replacer but skipped by rune-wise expansion.
var leetLower = map[rune][]string{
	'a': {"@", "4", "*", "α", "λ", "Д", "à", "á", "â", "ã", "ä", "å", "ā", "ă", "ą", "ɐ", "ɒ", "ᴀ", "ₐ", "ᵃ"},
	'b': {"8", "6", "*", "β", "Ь", "ß", "ḃ", "ḅ", "ḇ", "ɓ", "ʙ", "|)"},
	'c': {"(", "<", "*", "¢", "ç", "ć", "ĉ", "ċ", "č", "ɔ", "ᴄ", "с"},
	'd': {"đ", "ď", "ɖ", "ð", "ᴅ", "ԁ", "|)"},
	'e': {"3", "*", "€", "£", "ε", "è", "é", "ê", "ë", "ē", "ĕ", "ė", "ę", "ě", "ǝ", "ɘ", "ᴇ", "е", "ₑ"},
	'f': {"ƒ", "ʄ", "ʃ", "ꜰ"},
	'g': {"9", "ğ", "ġ", "ģ", "ĝ", "ɠ", "ɡ", "ɢ"},
	'h': {"#", "ĥ", "ħ", "ɦ", "ʜ", "н", "һ"},
	'i': {"1", "!", "|", "*", "ι", "ì", "í", "î", "ï", "ĩ", "ī", "ĭ", "į", "ı", "ɨ", "ɪ", "і"},
	'j': {"ĵ", "ǰ", "ʝ", "ᴊ", "ј"},
	'k': {"κ", "ķ", "ƙ", "ʞ", "ᴋ", "к"},
	'l': {"1", "|", "*", "ĺ", "ļ", "ľ", "ŀ", "ł", "ɭ", "ʟ", "ӏ"},
	'm': {"ɯ", "ɱ", "ᴍ", "м"},
	'n': {"ñ", "ń", "ņ", "ň", "ŉ", "ɲ", "ɴ", "и", "п"},
	'o': {"0", "*", "ο", "θ", "ò", "ó", "ô", "õ", "ö", "ø", "ō", "ŏ", "ő", "ɵ", "ᴏ", "о", "()"},
	'p': {"ρ", "ƥ", "ᴘ", "р"},
	'q': {"ϙ", "ʠ", "ǫ", "ԛ"},
	'r': {"ŕ", "ŗ", "ř", "ɹ", "ʀ", "я", "г"},
	's': {"5", "$", "*", "§", "ś", "ŝ", "ş", "š", "ſ", "ʂ", "ꜱ", "ѕ"},
	't': {"7", "+", "*", "†", "τ", "ţ", "ť", "ŧ", "ʈ", "ᴛ", "т"},
	'u': {"@", "v", "*", "µ", "υ", "ù", "ú", "û", "ü", "ũ", "ū", "ŭ", "ů", "ű", "ų", "ʊ", "ᴜ", "ц"},
	'v': {"*", "ν", "ʋ", "ᴠ", "ѵ", "\\/"},
	'w': {"ω", "ʍ", "ᴡ", "ш", "щ", "vv", "uu"},
	'x': {"*", "×", "χ", "ж", "х", "><"},
	'y': {"ý", "ÿ", "ŷ", "ƴ", "ʎ", "ʏ", "у", "γ"},
	'z': {"2", "*", "ź", "ż", "ž", "ʐ", "ᴢ", "з"},
}

// leetDigit holds the letters and symbols commonly used in place of digits,
// completing the letter<->digit substitution cycle in both directions.
var leetDigit = map[rune][]string{
	'0': {"o", "O", "ο", "θ", "ø", "()"},
	'1': {"i", "I", "l", "L", "!", "|"},
	'2': {"z", "Z", "ƻ"},
	'3': {"e", "E", "ε", "Ʒ", "ɜ"},
	'4': {"a", "A", "h"},
	'5': {"s", "S", "§"},
	'6': {"b", "G", "б"},
	'7': {"t", "T", "+"},
	'8': {"b", "B", "ʙ"},
	'9': {"g", "q", "ɡ"},
}

// buildSubstitutionEntries assembles the complete ordered substitution table:
// lowercase a-z, then A-Z, then digits 0-9. First registration wins when two
// entries claim the same glyph, so this order is load-bearing.
func buildSubstitutionEntries() []substitutionEntry {
	entries := make([]substitutionEntry, 0, 62)

	for i := 0; i < 26; i++ {
		base := rune('a' + i)
		variants := []string{string(base)}
		variants = append(variants, leetLower[base]...)
		variants = append(variants, styledLowerVariants(i)...)
		entries = append(entries, substitutionEntry{base: base, variants: variants})
	}

	for i := 0; i < 26; i++ {
		base := rune('A' + i)
		variants := []string{string(base)}
		variants = append(variants, styledUpperVariants(i)...)
		entries = append(entries, substitutionEntry{base: base, variants: variants})
	}

	for d := 0; d < 10; d++ {
		base := rune('0' + d)
		variants := []string{string(base)}
		variants = append(variants, leetDigit[base]...)
		variants = append(variants, styledDigitVariants(d)...)
		entries = append(entries, substitutionEntry{base: base, variants: variants})
	}

	return entries
}

// homoglyphTable folds cross-script lookalikes that survive NFKC. Cyrillic
// and small-caps forms normalize to themselves under NFKC, so they need an
// explicit mapping.
var homoglyphTable = map[rune]rune{
	// Cyrillic
	'а': 'a', 'с': 'c', 'е': 'e', 'о': 'o', 'р': 'p', 'х': 'x',
	'у': 'y', 'і': 'i', 'ѕ': 's', 'ԁ': 'd', 'ӏ': 'l', 'һ': 'h',
	'ԛ': 'q', 'ј': 'j', 'к': 'k', 'м': 'm', 'т': 't', 'в': 'b',
	'н': 'h', 'г': 'r',
	// Greek
	'α': 'a', 'ε': 'e', 'ι': 'i', 'ο': 'o', 'ρ': 'p', 'τ': 't',
	'υ': 'u', 'ν': 'v', 'χ': 'x', 'κ': 'k', 'η': 'n',
	// Latin small caps and IPA
	'ᴀ': 'a', 'ʙ': 'b', 'ᴄ': 'c', 'ᴅ': 'd', 'ᴇ': 'e', 'ꜰ': 'f',
	'ɢ': 'g', 'ʜ': 'h', 'ɪ': 'i', 'ᴊ': 'j', 'ᴋ': 'k', 'ʟ': 'l',
	'ᴍ': 'm', 'ɴ': 'n', 'ᴏ': 'o', 'ᴘ': 'p', 'ǫ': 'q', 'ʀ': 'r',
	'ꜱ': 's', 'ᴛ': 't', 'ᴜ': 'u', 'ᴠ': 'v', 'ᴡ': 'w', 'ʏ': 'y',
	'ᴢ': 'z',
}

// hiddenSeparators lists the zero-width and invisible code points stripped
// before normalization. Kept as a RangeTable so the x/text runes.Remove
// transformer can consume it directly.
var hiddenSeparators = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00AD, Hi: 0x00AD, Stride: 1}, // soft hyphen
		{Lo: 0x034F, Hi: 0x034F, Stride: 1}, // combining grapheme joiner
		{Lo: 0x1160, Hi: 0x1160, Stride: 1}, // hangul jungseong filler
		{Lo: 0x17B5, Hi: 0x17B6, Stride: 1}, // khmer inherent vowels
		{Lo: 0x180E, Hi: 0x180E, Stride: 1}, // mongolian vowel separator
		{Lo: 0x200B, Hi: 0x200D, Stride: 1}, // zero-width space, ZWNJ, ZWJ
		{Lo: 0x2028, Hi: 0x2029, Stride: 1}, // line/paragraph separator
		{Lo: 0x2060, Hi: 0x2060, Stride: 1}, // word joiner
		{Lo: 0x3164, Hi: 0x3164, Stride: 1}, // hangul filler
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1}, // zero-width no-break space
	},
	LatinOffset: 1,
}
