// Package workflow screens a single document with one classifier. The
// screening runs as a state graph: assess, an optional follow-up pass for
// criteria left unresolved, then finalize.
package workflow

import "errors"

// Sentinel errors for workflow operations.
var (
	ErrAssessFailed = errors.New("assessment failed")
	ErrMissingState = errors.New("missing workflow state")
)
