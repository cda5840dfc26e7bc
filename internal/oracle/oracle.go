// Package oracle adapts external text classifiers to the screening pipeline.
// An Oracle turns a prompt into raw text; Parse turns that text into a
// Response, which is either well-formed criterion assessments or a
// malformed-response record that downstream code handles through the same
// methods.
package oracle

import "context"

// Oracle is one external classification endpoint. Implementations must be
// safe to call from a single goroutine at a time; callers needing
// parallelism create one Oracle per goroutine.
type Oracle interface {
	// Name identifies the classifier in logs and provenance.
	Name() string
	// Assess sends prompt and returns the raw response text.
	Assess(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to the Oracle interface.
type Func struct {
	ID string
	Fn func(ctx context.Context, prompt string) (string, error)
}

func (f Func) Name() string {
	return f.ID
}

func (f Func) Assess(ctx context.Context, prompt string) (string, error) {
	return f.Fn(ctx, prompt)
}
