package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/screener/internal/criteria"
	"github.com/JaimeStill/screener/internal/entities"
	"github.com/JaimeStill/screener/internal/oracle"
	"github.com/JaimeStill/screener/internal/prompts"
	"github.com/JaimeStill/screener/internal/rules"
)

// FollowUpNode returns a state node that makes exactly one additional oracle
// call covering only the unresolved criteria. Follow-up assessments replace
// their targets with the prior assessment kept as Previous, and the decision
// rules run again without a second correction pass. Any failure keeps the
// first-pass result and records a note.
func FollowUpNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		doc, err := extractDocument(s)
		if err != nil {
			return s, fmt.Errorf("followup: %w", err)
		}

		sc, err := extractScreening(s)
		if err != nil {
			return s, fmt.Errorf("followup: %w", err)
		}

		current := sc.Current
		sc.Targets = current.Assessments.WithVerdict(criteria.Unresolved)

		var prior []criteria.Assessment
		for _, c := range sc.Targets {
			if a, ok := current.Assessments.Get(c); ok {
				prior = append(prior, a)
			}
		}

		prompt, err := ComposePrompt(ctx, rt.Prompts, prompts.StageFollowUp, doc, &FollowUp{
			Initial: sc.Raw,
			Targets: prior,
		})
		if err != nil {
			return s, fmt.Errorf("followup: %w", err)
		}

		raw, err := rt.call(ctx, prompt)
		if err != nil {
			return s.Set(KeyScreening, keepFirstPass(ctx, rt, doc.ID, sc, err)), nil
		}

		resp := oracle.Parse(raw, oracle.Request{
			Targets:    sc.Targets,
			Pass:       criteria.FollowUp,
			Classifier: rt.Oracle.Name(),
		})
		if !resp.WellFormed() {
			return s.Set(KeyScreening, keepFirstPass(ctx, rt, doc.ID, sc, resp.Err())), nil
		}

		set := merge(current.Assessments, resp.Assessments())

		entity := current.Entity
		if resp.Mention() != "" {
			if m := rt.Matcher.Match(resp.Mention(), doc.Title, doc.Body); m.Verdict != entities.Unknown {
				entity = m
			}
		}

		result := rt.Engine.Decide(set, entity)
		result.Notes = current.Notes
		sc.Current = result

		rt.Logger.InfoContext(
			ctx, "followup node complete",
			"document_id", doc.ID,
			"targets", len(sc.Targets),
			"decision", result.Decision,
			"rule", result.Rule,
		)

		return s.Set(KeyScreening, sc), nil
	})
}

// merge replaces each target in set with its follow-up assessment, linking
// the replaced assessment as Previous.
func merge(set criteria.Set, followUp criteria.Set) criteria.Set {
	for _, a := range followUp.Assessments() {
		prior, ok := set.Get(a.Criterion)
		if !ok {
			set = set.With(a)
			continue
		}
		set = set.With(prior.Supersede(a.Verdict, a.Justification, a.Provenance))
	}
	return set
}

func keepFirstPass(ctx context.Context, rt *Runtime, documentID string, sc Screening, err error) Screening {
	rt.Logger.WarnContext(
		ctx, "follow-up failed, keeping first-pass result",
		"document_id", documentID,
		"error", err,
	)

	sc.FollowUpErr = err.Error()
	sc.Current = withFollowUpError(sc.Current, err)
	return sc
}

func withFollowUpError(r rules.Result, err error) rules.Result {
	return r.WithNote(fmt.Sprintf("follow-up error: %v", err))
}
