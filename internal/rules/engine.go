package rules

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/screener/internal/criteria"
	"github.com/JaimeStill/screener/internal/entities"
)

// Engine applies the correction pass and the decision rules. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	phrases Phrases
	logger  *slog.Logger
}

// New creates an engine with the given correction phrases.
func New(phrases Phrases, logger *slog.Logger) *Engine {
	return &Engine{
		phrases: Phrases{
			Impact:    lowerAll(phrases.Impact),
			Provision: lowerAll(phrases.Provision),
		},
		logger: logger.With("system", "rules"),
	}
}

// Evaluate runs Correct followed by Decide. Use it on first-pass assessments only.
func (e *Engine) Evaluate(set criteria.Set, entity entities.Result) Result {
	return e.Decide(e.Correct(set), entity)
}

// Correct rewrites an affirmed productive-assets assessment to DENY when cash
// support is also affirmed and the assets justification reads as impact
// measurement rather than direct provision. The original assessment is kept
// as Previous on the replacement.
func (e *Engine) Correct(set criteria.Set) criteria.Set {
	cash, ok := set.Get(criteria.CashSupport)
	if !ok || cash.Verdict != criteria.Affirm {
		return set
	}
	assets, ok := set.Get(criteria.ProductiveAssets)
	if !ok || assets.Verdict != criteria.Affirm {
		return set
	}
	if !e.impactOnly(assets.Justification) {
		return set
	}

	corrected := assets.Supersede(
		criteria.Deny,
		"corrected: justification describes impact measurement, not direct provision; "+
			"cash-only programmes do not provide productive assets. original: "+truncate(assets.Justification, 100),
		criteria.Provenance{
			Pass:       criteria.Correction,
			Classifier: assets.Provenance.Classifier,
			Note:       "cash-transfer correction",
		},
	)

	e.logger.Debug("productive assets corrected to DENY", "classifier", assets.Provenance.Classifier)
	return set.With(corrected)
}

func (e *Engine) impactOnly(justification string) bool {
	j := strings.ToLower(justification)
	return containsAny(j, e.phrases.Impact) && !containsAny(j, e.phrases.Provision)
}

// Decide applies the decision rules in precedence order; the first match
// wins. It is a pure function of its inputs.
func (e *Engine) Decide(set criteria.Set, entity entities.Result) Result {
	set = withEntity(set, entity)
	tally := set.Tally()

	r := Result{
		Assessments: set,
		Tally:       tally,
		Entity:      entity,
	}

	switch entity.Verdict {
	case entities.Relevant:
		if v, ok := set.Verdict(criteria.StudyDesign); ok && v == criteria.Deny {
			return r.decided(Reject, RuleEntityRelevantDesignDenied,
				fmt.Sprintf("known relevant programme %s but study design denied", entity.Entity))
		}
		return r.decided(Accept, RuleEntityRelevant,
			fmt.Sprintf("known relevant programme %s identified", entity.Entity))
	case entities.Irrelevant:
		return r.decided(Reject, RuleEntityIrrelevant,
			fmt.Sprintf("known irrelevant programme %s identified", entity.Entity))
	}

	if denied := set.WithVerdict(criteria.Deny); len(denied) > 0 {
		return r.decided(Reject, RuleAnyDenied,
			fmt.Sprintf("%d criteria denied (%s)", len(denied), join(denied)))
	}

	required := len(criteria.Required())
	if tally.Affirm == required && tally.Unresolved == 0 {
		return r.decided(Accept, RuleAllAffirmed,
			fmt.Sprintf("all %d criteria affirmed", required))
	}

	if unresolved := set.WithVerdict(criteria.Unresolved); len(unresolved) > 0 {
		return r.decided(Uncertain, RuleSomeUnresolved,
			fmt.Sprintf("no criteria denied, %d unresolved (%s)", len(unresolved), join(unresolved)))
	}

	e.logger.Warn(
		"unexpected criteria pattern",
		"affirm", tally.Affirm,
		"deny", tally.Deny,
		"unresolved", tally.Unresolved,
		"missing", join(set.Missing()),
		"criteria", describe(set),
		"entity", entity.Verdict,
	)

	return r.decided(Uncertain, RuleUnexpectedPattern,
		fmt.Sprintf("unexpected criteria pattern %d affirm/%d deny/%d unresolved, missing (%s)",
			tally.Affirm, tally.Deny, tally.Unresolved, join(set.Missing())))
}

func (r Result) decided(d Decision, rule Rule, rationale string) Result {
	r.Decision = d
	r.Rule = rule
	r.Rationale = rationale
	return r
}

// EntityAssessment converts an entity match into the assessment recorded for
// the entity criterion.
func EntityAssessment(entity entities.Result) criteria.Assessment {
	v := criteria.Unresolved
	switch entity.Verdict {
	case entities.Relevant:
		v = criteria.Affirm
	case entities.Irrelevant:
		v = criteria.Deny
	}
	return criteria.Assessment{
		Criterion:     criteria.Entity,
		Verdict:       v,
		Justification: entity.Rationale,
		Provenance:    criteria.Provenance{Pass: criteria.EntityMatcher},
	}
}

// withEntity records the matcher verdict in the set. An existing matcher
// assessment is replaced in place so repeated Decide calls do not grow the
// history; a classifier-supplied one is superseded.
func withEntity(set criteria.Set, entity entities.Result) criteria.Set {
	next := EntityAssessment(entity)

	existing, ok := set.Get(criteria.Entity)
	switch {
	case !ok:
		return set.With(next)
	case existing.Provenance.Pass == criteria.EntityMatcher:
		next.Previous = existing.Previous
		return set.With(next)
	default:
		return set.With(existing.Supersede(next.Verdict, next.Justification, next.Provenance))
	}
}

func describe(set criteria.Set) string {
	parts := make([]string, 0, set.Len())
	for _, a := range set.Assessments() {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Criterion, a.Verdict))
	}
	return strings.Join(parts, " ")
}

func join(cs []criteria.Criterion) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
