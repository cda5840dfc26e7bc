// Package rules turns criterion assessments and an entity match into a
// screening decision using a fixed, ordered rule list.
package rules

import (
	"github.com/JaimeStill/screener/internal/criteria"
	"github.com/JaimeStill/screener/internal/entities"
)

// Decision is the screening outcome for one document.
type Decision string

const (
	Accept    Decision = "ACCEPT"
	Reject    Decision = "REJECT"
	Uncertain Decision = "UNCERTAIN"
)

// Rule names the decision rule that fired. Values are stable and exported in reports.
type Rule string

const (
	RuleEntityRelevant             Rule = "entity-override-relevant"
	RuleEntityRelevantDesignDenied Rule = "entity-override-relevant-but-design-denied"
	RuleEntityIrrelevant           Rule = "entity-override-irrelevant"
	RuleAnyDenied                  Rule = "any-denied"
	RuleAllAffirmed                Rule = "all-affirmed"
	RuleSomeUnresolved             Rule = "some-unresolved"
	RuleUnexpectedPattern          Rule = "unexpected-pattern"
)

// Result is a complete, auditable classification of one document by one
// classifier. Decide(Assessments, Entity) reproduces Decision and Rule.
type Result struct {
	Assessments criteria.Set    `json:"assessments"`
	Tally       criteria.Tally  `json:"tally"`
	Entity      entities.Result `json:"entity"`
	Decision    Decision        `json:"decision"`
	Rule        Rule            `json:"rule"`
	Rationale   string          `json:"rationale"`
	Notes       []string        `json:"notes,omitempty"`
}

// WithNote returns a copy of r with note appended.
func (r Result) WithNote(note string) Result {
	r.Notes = append(append([]string(nil), r.Notes...), note)
	return r
}
