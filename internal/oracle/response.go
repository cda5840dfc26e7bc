package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/JaimeStill/screener/internal/criteria"
	"github.com/JaimeStill/screener/pkg/formatting"
)

// Request describes what a response is expected to contain and how its
// assessments should be stamped.
type Request struct {
	// Targets are the criteria the response must cover. The entity criterion
	// is optional even when listed.
	Targets    []criteria.Criterion
	Pass       criteria.Pass
	Classifier string
}

// Response is the parsed form of one oracle reply. It is either well-formed
// or malformed; both expose the same methods so callers never branch on the
// concrete kind.
type Response interface {
	// WellFormed reports whether the reply parsed cleanly.
	WellFormed() bool
	// Assessments returns one assessment per target. A malformed response
	// yields UNRESOLVED for every target with a diagnostic justification.
	Assessments() criteria.Set
	// Mention is the programme name the classifier reported, if any.
	Mention() string
	// Raw is the unmodified reply text.
	Raw() string
	// Err describes why a malformed response was rejected; nil when well-formed.
	Err() error
}

type wellFormed struct {
	set     criteria.Set
	mention string
	raw     string
}

func (w wellFormed) WellFormed() bool          { return true }
func (w wellFormed) Assessments() criteria.Set { return w.set }
func (w wellFormed) Mention() string           { return w.mention }
func (w wellFormed) Raw() string               { return w.raw }
func (w wellFormed) Err() error                { return nil }

type malformed struct {
	req criteria.Set
	raw string
	err error
}

func (m malformed) WellFormed() bool          { return false }
func (m malformed) Assessments() criteria.Set { return m.req }
func (m malformed) Mention() string           { return "" }
func (m malformed) Raw() string               { return m.raw }
func (m malformed) Err() error                { return m.err }

// Malformed builds a malformed response for req, recording err as the reason.
func Malformed(raw string, req Request, err error) Response {
	var as []criteria.Assessment
	for _, c := range req.Targets {
		if c == criteria.Entity {
			continue
		}
		as = append(as, criteria.Assessment{
			Criterion:     c,
			Verdict:       criteria.Unresolved,
			Justification: fmt.Sprintf("error: %v", err),
			Provenance: criteria.Provenance{
				Pass:       criteria.Recovery,
				Classifier: req.Classifier,
				Note:       "malformed response recovered as UNRESOLVED",
			},
		})
	}
	return malformed{req: criteria.NewSet(as...), raw: raw, err: err}
}

type payload struct {
	EntityMention string                     `json:"entity_mention"`
	Criteria      map[string]json.RawMessage `json:"criteria_evaluation"`
}

type entry struct {
	Assessment    *string         `json:"assessment"`
	Reasoning     *string         `json:"reasoning"`
	YearExtracted json.RawMessage `json:"year_extracted"`
}

// Parse interprets raw oracle output for req. Code fences, surrounding prose,
// and typographic quotes are tolerated. Any structural problem, an
// unrecognized verdict word, or a missing target yields a malformed response.
func Parse(raw string, req Request) Response {
	p, err := formatting.Parse[payload](raw)
	if err != nil {
		return Malformed(raw, req, err)
	}
	if p.Criteria == nil {
		return Malformed(raw, req, fmt.Errorf("%w: criteria_evaluation absent", ErrMissingCriteria))
	}

	entries := make(map[criteria.Criterion]json.RawMessage, len(p.Criteria))
	for name, data := range p.Criteria {
		c, ok := criteria.Lookup(name)
		if !ok {
			continue
		}
		// canonical names win over aliases
		if _, exists := entries[c]; exists && string(c) != strings.ToLower(strings.TrimSpace(name)) {
			continue
		}
		entries[c] = data
	}

	var missing []string
	for _, c := range req.Targets {
		if c == criteria.Entity {
			continue
		}
		if _, ok := entries[c]; !ok {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return Malformed(raw, req, fmt.Errorf("%w: %s", ErrMissingCriteria, strings.Join(missing, ", ")))
	}

	prov := criteria.Provenance{Pass: req.Pass, Classifier: req.Classifier}

	var as []criteria.Assessment
	var entityReasoning string
	for _, c := range req.Targets {
		data, ok := entries[c]
		if !ok {
			continue
		}

		a, err := parseEntry(c, data, prov)
		if err != nil {
			return Malformed(raw, req, err)
		}
		if c == criteria.Entity {
			entityReasoning = a.Justification
		}
		as = append(as, a)
	}

	mention := strings.TrimSpace(p.EntityMention)
	if mention == "" {
		mention = strings.TrimSpace(entityReasoning)
	}

	return wellFormed{
		set:     criteria.NewSet(as...),
		mention: mention,
		raw:     raw,
	}
}

func parseEntry(c criteria.Criterion, data json.RawMessage, prov criteria.Provenance) (criteria.Assessment, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return criteria.Assessment{}, fmt.Errorf("%w for %s: %w", ErrInvalidCriterion, c, err)
	}

	reasoning := "no reasoning provided"
	if e.Reasoning != nil && strings.TrimSpace(*e.Reasoning) != "" {
		reasoning = *e.Reasoning
	}

	a := criteria.Assessment{
		Criterion:     c,
		Justification: reasoning,
		Provenance:    prov,
	}

	if c == criteria.PublicationYear && hasValue(e.YearExtracted) {
		a.Verdict, a.Justification = assessYear(e.YearExtracted, reasoning)
		return a, nil
	}

	word := "UNCLEAR"
	if e.Assessment != nil {
		word = *e.Assessment
	}
	v, ok := criteria.ParseVerdict(word)
	if !ok && c == criteria.Entity {
		// the matcher decides the entity criterion; the classifier's word is advisory
		v, ok = criteria.Unresolved, true
	}
	if !ok {
		return criteria.Assessment{}, fmt.Errorf("%w: assessment %q for %s", ErrInvalidCriterion, word, c)
	}
	a.Verdict = v
	return a, nil
}

// MinimumYear is the earliest publication year that satisfies the year criterion.
const MinimumYear = 2004

// assessYear decides the year criterion from an extracted year so the
// threshold comparison never depends on the classifier.
func assessYear(data json.RawMessage, reasoning string) (criteria.Verdict, string) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(bytes.TrimSpace(data))
	}
	s = strings.TrimSpace(s)

	year, err := strconv.Atoi(s)
	if err != nil || year <= 0 {
		return criteria.Unresolved, "year extraction: " + reasoning
	}
	if year >= MinimumYear {
		return criteria.Affirm, fmt.Sprintf("year %d >= %d (extracted)", year, MinimumYear)
	}
	return criteria.Deny, fmt.Sprintf("year %d < %d (extracted)", year, MinimumYear)
}

func hasValue(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
