// Package compare runs two independent classifiers on the same document and
// reports whether they agree and how urgently a disagreement needs review.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/screener/internal/documents"
	"github.com/JaimeStill/screener/internal/rules"
)

// Classifier screens one document.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, doc documents.Document) (*rules.Result, error)
}

// Comparator pairs two classifiers. A Comparator belongs to one worker; its
// classifiers are never called from more than one goroutine each.
type Comparator struct {
	primary   Classifier
	secondary Classifier
	worker    int
	logger    *slog.Logger
}

// New creates a comparator for worker.
func New(primary, secondary Classifier, worker int, logger *slog.Logger) *Comparator {
	return &Comparator{
		primary:   primary,
		secondary: secondary,
		worker:    worker,
		logger:    logger.With("system", "compare", "worker", worker),
	}
}

// ClassifyBoth runs both classifiers concurrently and combines their
// outcomes. A failure on one side is recorded as an error outcome and never
// cancels the other side.
func (c *Comparator) ClassifyBoth(ctx context.Context, doc documents.Document) DualResult {
	var (
		wg                 sync.WaitGroup
		primary, secondary Outcome
	)

	wg.Go(func() { primary = c.run(ctx, c.primary, doc) })
	wg.Go(func() { secondary = c.run(ctx, c.secondary, doc) })
	wg.Wait()

	dr := DualResult{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		Primary:     primary,
		Secondary:   secondary,
		Agreement:   Agree(primary, secondary),
		Priority:    Prioritize(primary, secondary),
		ProcessedAt: time.Now().UTC(),
		Worker:      c.worker,
	}

	c.logger.InfoContext(
		ctx, "document compared",
		"document_id", doc.ID,
		"primary", primary.Decision(),
		"secondary", secondary.Decision(),
		"agreement", dr.Agreement,
		"priority", dr.Priority,
	)

	return dr
}

func (c *Comparator) run(ctx context.Context, cl Classifier, doc documents.Document) (out Outcome) {
	start := time.Now()
	out.Classifier = cl.Name()

	defer func() {
		if r := recover(); r != nil {
			out = errorOutcome(cl.Name(), fmt.Errorf("classifier panic: %v", r), time.Since(start))
		}
	}()

	result, err := cl.Classify(ctx, doc)
	if err != nil {
		c.logger.WarnContext(
			ctx, "classifier failed",
			"document_id", doc.ID,
			"classifier", cl.Name(),
			"error", err,
		)
		return errorOutcome(cl.Name(), err, time.Since(start))
	}

	return Outcome{
		Classifier: cl.Name(),
		Status:     StatusOK,
		Result:     result,
		Duration:   time.Since(start),
	}
}

func errorOutcome(name string, err error, d time.Duration) Outcome {
	return Outcome{
		Classifier: name,
		Status:     StatusError,
		Error:      err.Error(),
		Duration:   d,
	}
}

// Agree reports whether both outcomes succeeded with the same decision.
func Agree(primary, secondary Outcome) bool {
	return primary.OK() && secondary.OK() &&
		primary.Result.Decision == secondary.Result.Decision
}

// Prioritize ranks how urgently a pair of outcomes needs human review.
func Prioritize(primary, secondary Outcome) Priority {
	switch {
	case Agree(primary, secondary):
		return PriorityLow
	case !primary.OK() || !secondary.OK():
		return PriorityMedium
	case primary.Result.Decision == rules.Accept || secondary.Result.Decision == rules.Accept:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}
