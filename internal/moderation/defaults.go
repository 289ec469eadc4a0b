package moderation

// defaultBlocklist is the baseline term set applied to rooms that have not
// configured their own. Single words go through the obfuscation engine;
// multi-word entries are matched as literal phrases.
func defaultBlocklist() []string {
	var terms []string

	// Slurs.
	terms = append(terms,
		"nigger", "nigga", "faggot", "kike", "spic", "chink",
		"wetback", "tranny", "retard",
	)

	// Strong profanity.
	terms = append(terms,
		"fuck", "shit", "cunt", "bitch", "whore", "slut",
		"cock", "dick", "ass", "hell",
	)

	// Sexual violence and exploitation.
	terms = append(terms,
		"rape", "rapist", "pedo", "pedophile",
		"child porn", "child abuse", "cp trade",
		"send nudes", "show me your body",
	)

	// Self-harm bait.
	terms = append(terms,
		"kill yourself", "kill urself", "go die", "end your life",
		"drink bleach", "slit your wrists",
	)

	// Extremism and threats.
	terms = append(terms,
		"heil hitler", "gas the", "white power", "race war",
		"bomb threat", "shoot up", "school shooting",
	)

	// Scams.
	terms = append(terms,
		"free bitcoin", "free crypto", "double your money",
		"wire me", "gift card code", "cash app me",
	)

	return terms
}
