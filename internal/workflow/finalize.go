package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// FinalizeNode returns a state node that records the follow-up outcome in
// the result rationale. Results that never needed a follow-up pass are left
// as evaluated.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sc, err := extractScreening(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		if sc.FollowedUp() {
			sc.Current.Rationale = followUpRationale(sc)
		}

		rt.Logger.InfoContext(
			ctx, "finalize node complete",
			"decision", sc.Current.Decision,
			"rule", sc.Current.Rule,
			"followed_up", sc.FollowedUp(),
		)

		return s.Set(KeyScreening, sc), nil
	})
}

func followUpRationale(sc Screening) string {
	targets := make([]string, len(sc.Targets))
	for i, c := range sc.Targets {
		targets[i] = string(c)
	}

	parts := []string{
		sc.Current.Rationale,
		"follow-up targeted: " + strings.Join(targets, ", "),
	}

	switch {
	case sc.FollowUpErr != "":
		parts = append(parts, "follow-up failed, first-pass decision kept")
	case sc.Current.Decision != sc.Initial.Decision:
		parts = append(parts, fmt.Sprintf("follow-up updated decision from %s to %s",
			sc.Initial.Decision, sc.Current.Decision))
	default:
		parts = append(parts, "follow-up could not resolve uncertainty")
	}

	return strings.Join(parts, "; ")
}
