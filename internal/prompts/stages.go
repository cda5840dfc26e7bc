package prompts

import (
	"fmt"
	"slices"
)

// Stage identifies the screening step a prompt serves.
type Stage string

const (
	StageAssess   Stage = "assess"
	StageFollowUp Stage = "followup"
)

var stages = []Stage{
	StageAssess,
	StageFollowUp,
}

// Stages returns the list of valid stages.
func Stages() []Stage {
	return slices.Clone(stages)
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
	}
	return v, nil
}
