// Package criteria defines the inclusion criteria a document is screened
// against, the tri-state verdicts recorded for them, and the immutable
// assessment records that carry those verdicts through the pipeline.
package criteria

import "strings"

// Criterion names one inclusion criterion. Values are the wire names used
// in classifier responses and exported reports.
type Criterion string

const (
	Entity           Criterion = "program_recognition"
	LMIC             Criterion = "participants_lmic"
	CashSupport      Criterion = "component_a_cash_support"
	ProductiveAssets Criterion = "component_b_productive_assets"
	Outcomes         Criterion = "relevant_outcomes"
	StudyDesign      Criterion = "appropriate_study_design"
	PublicationYear  Criterion = "publication_year_2004_plus"
	Completed        Criterion = "completed_study"
)

var required = []Criterion{
	LMIC,
	CashSupport,
	ProductiveAssets,
	Outcomes,
	StudyDesign,
	PublicationYear,
	Completed,
}

var aliases = map[string]Criterion{
	"publication_year": PublicationYear,
}

// Required returns the criteria every complete assessment must cover, in canonical order.
// The entity criterion is not among them; it is decided by the entity matcher.
func Required() []Criterion {
	return append([]Criterion(nil), required...)
}

// All returns the entity criterion followed by the required criteria.
func All() []Criterion {
	return append([]Criterion{Entity}, required...)
}

// Lookup resolves a wire name, including known aliases, to a Criterion.
func Lookup(name string) (Criterion, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := aliases[name]; ok {
		return c, true
	}
	c := Criterion(name)
	return c, c.Valid()
}

// Valid reports whether c is a known criterion.
func (c Criterion) Valid() bool {
	return c == Entity || c.IsRequired()
}

// IsRequired reports whether c is one of the required criteria.
func (c Criterion) IsRequired() bool {
	for _, r := range required {
		if r == c {
			return true
		}
	}
	return false
}

func (c Criterion) order() int {
	if c == Entity {
		return 0
	}
	for i, r := range required {
		if r == c {
			return i + 1
		}
	}
	return len(required) + 1
}

var labels = map[Criterion]string{
	Entity:           "Programme recognition",
	LMIC:             "LMIC participants",
	CashSupport:      "Cash support",
	ProductiveAssets: "Productive assets",
	Outcomes:         "Relevant outcomes",
	StudyDesign:      "Study design",
	PublicationYear:  "Year 2004+",
	Completed:        "Completed study",
}

// Label returns a short human-readable name for c.
func (c Criterion) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}
