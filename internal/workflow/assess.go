package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/screener/internal/criteria"
	"github.com/JaimeStill/screener/internal/entities"
	"github.com/JaimeStill/screener/internal/oracle"
	"github.com/JaimeStill/screener/internal/prompts"
)

// AssessNode returns a state node that makes the first-pass oracle call,
// parses the reply, matches the reported programme against the entity
// dictionary, and evaluates the result with the correction pass applied.
// A failed call is returned as an error; a malformed reply is recovered as
// all-UNRESOLVED and noted on the result.
func AssessNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		doc, err := extractDocument(s)
		if err != nil {
			return s, fmt.Errorf("assess: %w", err)
		}

		prompt, err := ComposePrompt(ctx, rt.Prompts, prompts.StageAssess, doc, nil)
		if err != nil {
			return s, fmt.Errorf("assess: %w", err)
		}

		raw, err := rt.call(ctx, prompt)
		if err != nil {
			return s, fmt.Errorf("%w: %w: %w", ErrAssessFailed, oracle.ErrAssessFailed, err)
		}

		resp := oracle.Parse(raw, oracle.Request{
			Targets:    criteria.All(),
			Pass:       criteria.FirstPass,
			Classifier: rt.Oracle.Name(),
		})

		entity := entities.Result{
			Verdict:   entities.Unknown,
			Rationale: "first-pass response malformed; programme not matched",
		}
		if resp.WellFormed() {
			entity = rt.Matcher.Match(resp.Mention(), doc.Title, doc.Body)
		}
		result := rt.Engine.Evaluate(resp.Assessments(), entity)

		if !resp.WellFormed() {
			rt.Logger.WarnContext(
				ctx, "malformed first-pass response",
				"document_id", doc.ID,
				"error", resp.Err(),
			)
			result = result.WithNote(fmt.Sprintf("first-pass response malformed: %v", resp.Err()))
		}

		rt.Logger.InfoContext(
			ctx, "assess node complete",
			"document_id", doc.ID,
			"decision", result.Decision,
			"rule", result.Rule,
		)

		s = s.Set(KeyScreening, Screening{
			Initial: result,
			Current: result,
			Raw:     raw,
		})
		return s, nil
	})
}
