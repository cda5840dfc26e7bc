// Package entities identifies named programmes in document text by literal
// lookup against curated, versioned dictionaries.
package entities

import (
	"fmt"
	"strings"
)

// Verdict classifies a document's programme against the curated lists.
type Verdict string

const (
	Relevant   Verdict = "RELEVANT"
	Irrelevant Verdict = "IRRELEVANT"
	Unknown    Verdict = "UNKNOWN"
)

// Result is the outcome of one match. For RELEVANT and IRRELEVANT, Entity is
// the canonical name and Variant is the normalized variant found verbatim in
// the normalized search text.
type Result struct {
	Verdict   Verdict `json:"verdict"`
	Entity    string  `json:"entity,omitempty"`
	Variant   string  `json:"variant,omitempty"`
	Rationale string  `json:"rationale"`
}

var noEntityMarkers = []string{
	"unclear",
	"not specified",
	"n/a",
	"none",
	"not identified",
	"no specific program",
	"no program mentioned",
}

var quoteStripper = strings.NewReplacer(
	`"`, "", "'", "", "`", "",
	"‘", "", "’", "", "‚", "", "‛", "",
	"“", "", "”", "", "„", "", "‟", "",
	"´", "", "′", "", "″", "",
)

// Normalize lowercases s, strips quote and apostrophe characters, collapses
// runs of whitespace to single spaces, and trims.
func Normalize(s string) string {
	s = quoteStripper.Replace(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

type compiled struct {
	name     string
	variants []string
}

// Matcher matches documents against one dictionary. It is safe for concurrent use.
type Matcher struct {
	version    string
	relevant   []compiled
	irrelevant []compiled
}

// NewMatcher validates d and precomputes its normalized variants.
func NewMatcher(d Dictionary) (*Matcher, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{
		version:    d.Version,
		relevant:   compile(d.Relevant),
		irrelevant: compile(d.Irrelevant),
	}, nil
}

func compile(entities []Entity) []compiled {
	out := make([]compiled, 0, len(entities))
	for _, e := range entities {
		c := compiled{name: e.Name}
		for _, v := range e.Variants {
			c.variants = append(c.variants, Normalize(v))
		}
		out = append(out, c)
	}
	return out
}

// Version returns the dictionary version the matcher was built from.
func (m *Matcher) Version() string {
	return m.version
}

// Match looks for a known programme. An empty mention, or one carrying a
// no-entity marker, short-circuits to UNKNOWN; otherwise the relevant list is
// scanned before the irrelevant list over title, body, and mention.
func (m *Matcher) Match(mention, title, body string) Result {
	nm := Normalize(mention)
	if nm == "" {
		return Result{
			Verdict:   Unknown,
			Rationale: "classifier reported no programme mention",
		}
	}

	for _, marker := range noEntityMarkers {
		if strings.Contains(nm, marker) {
			return Result{
				Verdict:   Unknown,
				Rationale: fmt.Sprintf("classifier reported no specific programme (%q)", marker),
			}
		}
	}

	text := Normalize(title) + " " + Normalize(body) + " " + nm

	if name, variant, ok := scan(m.relevant, text); ok {
		return Result{
			Verdict:   Relevant,
			Entity:    name,
			Variant:   variant,
			Rationale: fmt.Sprintf("matched relevant programme %s via %q (dictionary %s)", name, variant, m.version),
		}
	}

	if name, variant, ok := scan(m.irrelevant, text); ok {
		return Result{
			Verdict:   Irrelevant,
			Entity:    name,
			Variant:   variant,
			Rationale: fmt.Sprintf("matched irrelevant programme %s via %q (dictionary %s)", name, variant, m.version),
		}
	}

	return Result{
		Verdict:   Unknown,
		Rationale: fmt.Sprintf("no known programme matched (dictionary %s)", m.version),
	}
}

func scan(list []compiled, text string) (string, string, bool) {
	for _, e := range list {
		for _, v := range e.variants {
			if strings.Contains(text, v) {
				return e.name, v, true
			}
		}
	}
	return "", "", false
}
