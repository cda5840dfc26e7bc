package compare

import (
	"context"

	"github.com/JaimeStill/screener/internal/documents"
	"github.com/JaimeStill/screener/internal/rules"
	"github.com/JaimeStill/screener/internal/workflow"
)

// WorkflowClassifier screens documents through the follow-up workflow with
// one oracle.
type WorkflowClassifier struct {
	rt *workflow.Runtime
}

// NewWorkflowClassifier wraps rt as a Classifier.
func NewWorkflowClassifier(rt *workflow.Runtime) *WorkflowClassifier {
	return &WorkflowClassifier{rt: rt}
}

func (w *WorkflowClassifier) Name() string {
	return w.rt.Oracle.Name()
}

func (w *WorkflowClassifier) Classify(ctx context.Context, doc documents.Document) (*rules.Result, error) {
	return workflow.Execute(ctx, w.rt, doc)
}
