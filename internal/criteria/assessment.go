package criteria

// Pass identifies the stage that produced an assessment.
type Pass string

const (
	FirstPass     Pass = "first-pass"
	FollowUp      Pass = "follow-up"
	Correction    Pass = "correction"
	EntityMatcher Pass = "entity-matcher"
	Recovery      Pass = "recovery"
)

// Provenance records where an assessment came from.
type Provenance struct {
	Pass       Pass   `json:"pass"`
	Classifier string `json:"classifier,omitempty"`
	Note       string `json:"note,omitempty"`
}

// Assessment is one criterion verdict with its justification. Assessments are
// values: a correction or follow-up produces a new Assessment whose Previous
// points at the one it supersedes.
type Assessment struct {
	Criterion     Criterion   `json:"criterion"`
	Verdict       Verdict     `json:"verdict"`
	Justification string      `json:"justification"`
	Provenance    Provenance  `json:"provenance"`
	Previous      *Assessment `json:"previous,omitempty"`
}

// Supersede returns a new assessment for the same criterion that links back to a.
func (a Assessment) Supersede(v Verdict, justification string, prov Provenance) Assessment {
	prev := a
	return Assessment{
		Criterion:     a.Criterion,
		Verdict:       v,
		Justification: justification,
		Provenance:    prov,
		Previous:      &prev,
	}
}

// History returns a followed by every assessment it superseded, newest first.
func (a Assessment) History() []Assessment {
	history := []Assessment{a}
	for p := a.Previous; p != nil; p = p.Previous {
		history = append(history, *p)
	}
	return history
}
