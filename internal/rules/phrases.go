package rules

// Phrases drives the cash-transfer correction. Impact phrases suggest the
// productive-assets justification describes measured effects on assets;
// provision phrases suggest the programme hands assets out directly.
// Matching is case-insensitive substring search and the lists are not exhaustive.
type Phrases struct {
	Impact    []string `toml:"impact"`
	Provision []string `toml:"provision"`
}

// DefaultPhrases returns the built-in phrase lists.
func DefaultPhrases() Phrases {
	return Phrases{
		Impact: []string{
			"impacts on",
			"impact on",
			"effects on",
			"noticeable impacts",
			"program has",
			"ownership of",
			"asset ownership",
			"asset accumulation",
			"increased ownership",
			"improved ownership",
		},
		Provision: []string{
			"program provides",
			"program gives",
			"program transfers",
			"beneficiaries receive",
			"participants receive",
			"direct transfer",
			"livestock grants",
			"asset transfers",
		},
	}
}
