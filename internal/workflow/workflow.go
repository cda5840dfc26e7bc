package workflow

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/screener/internal/criteria"
	"github.com/JaimeStill/screener/internal/documents"
	"github.com/JaimeStill/screener/internal/rules"
)

// Execute screens one document with the runtime's classifier. It builds the
// state graph (assess → followup? → finalize), executes it, and extracts the
// final result. An error is returned only when the first-pass call fails or
// the graph itself cannot run.
func Execute(ctx context.Context, rt *Runtime, doc documents.Document) (*rules.Result, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyDocument, doc)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	sc, err := extractScreening(finalState)
	if err != nil {
		return nil, err
	}

	result := sc.Current
	return &result, nil
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("screener-screen")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("assess", AssessNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("followup", FollowUpNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("finalize", FinalizeNode(rt)); err != nil {
		return nil, err
	}

	needsFollowUp := followUpPredicate(rt)

	// assess → followup (uncertain with unresolved criteria)
	if err := graph.AddEdge("assess", "followup", needsFollowUp); err != nil {
		return nil, err
	}

	// assess → finalize (nothing to follow up)
	if err := graph.AddEdge("assess", "finalize", state.Not(needsFollowUp)); err != nil {
		return nil, err
	}

	// followup → finalize (unconditional; follow-up never repeats)
	if err := graph.AddEdge("followup", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("assess"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func followUpPredicate(rt *Runtime) func(state.State) bool {
	return func(s state.State) bool {
		if !rt.FollowUp {
			return false
		}
		sc, err := extractScreening(s)
		if err != nil {
			return false
		}
		return NeedsFollowUp(sc.Current)
	}
}

// NeedsFollowUp reports whether r is uncertain with at least one unresolved criterion.
func NeedsFollowUp(r rules.Result) bool {
	return r.Decision == rules.Uncertain &&
		len(r.Assessments.WithVerdict(criteria.Unresolved)) > 0
}

func extractDocument(s state.State) (documents.Document, error) {
	val, ok := s.Get(KeyDocument)
	if !ok {
		return documents.Document{}, fmt.Errorf("%w: %s", ErrMissingState, KeyDocument)
	}

	doc, ok := val.(documents.Document)
	if !ok {
		return documents.Document{}, fmt.Errorf("%w: %s is not documents.Document", ErrMissingState, KeyDocument)
	}

	return doc, nil
}

func extractScreening(s state.State) (Screening, error) {
	val, ok := s.Get(KeyScreening)
	if !ok {
		return Screening{}, fmt.Errorf("%w: %s", ErrMissingState, KeyScreening)
	}

	sc, ok := val.(Screening)
	if !ok {
		return Screening{}, fmt.Errorf("%w: %s is not Screening", ErrMissingState, KeyScreening)
	}

	return sc, nil
}
