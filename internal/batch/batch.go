// Package batch screens a document set with a fixed pool of workers,
// committing a resumable checkpoint after every batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/screener/internal/checkpoint"
	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/internal/documents"
)

// Comparer screens one document with both classifiers.
type Comparer interface {
	ClassifyBoth(ctx context.Context, doc documents.Document) compare.DualResult
}

// ComparatorFactory builds the comparer owned by one worker. Each worker
// calls it once, so classifier handles are never shared between workers.
type ComparatorFactory func(worker int) (Comparer, error)

// Options configures one run.
type Options struct {
	BatchSize int
	Workers   int
	RunID     string
	// RequireCheckpoint fails the run with ErrNoCheckpoint when no
	// checkpoint exists for RunID.
	RequireCheckpoint bool
	// OnProgress receives statistics after every committed batch. It runs
	// on the commit path and should return quickly.
	OnProgress func(Stats)
}

func (o Options) validate() error {
	if o.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidOptions)
	}
	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidOptions)
	}
	if err := checkpoint.ValidateRunID(o.RunID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// Orchestrator runs batches across a worker pool.
type Orchestrator struct {
	store    checkpoint.Store
	factory  ComparatorFactory
	logger   *slog.Logger
	progress atomic.Pointer[Stats]
	active   atomic.Pointer[committer]
}

// New creates an orchestrator that persists progress to store.
func New(store checkpoint.Store, factory ComparatorFactory, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		factory: factory,
		logger:  logger.With("system", "batch"),
	}
	o.progress.Store(&Stats{})
	return o
}

// Progress returns the statistics as of the last committed batch.
func (o *Orchestrator) Progress() Stats {
	return *o.progress.Load()
}

// Results returns the committed results of the current or most recent run
// in document order.
func (o *Orchestrator) Results() []compare.DualResult {
	c := o.active.Load()
	if c == nil {
		return nil
	}
	results, _ := c.snapshot()
	return results
}

// Run screens docs and returns one result per document in input order.
//
// Documents already recorded in the run's checkpoint are not screened
// again. When ctx is cancelled, no further batches are dispatched; batches
// already in flight finish and commit, and Run returns the partial results
// with ErrInterrupted. A checkpoint write failure stops the run with
// ErrCheckpointWrite. The checkpoint is deleted only when every document
// has a result.
func (o *Orchestrator) Run(ctx context.Context, docs []documents.Document, opts Options) ([]compare.DualResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	batches := Partition(docs, opts.BatchSize)
	order := make([]string, len(docs))
	known := make(map[string]bool, len(docs))
	for i, d := range docs {
		order[i] = d.ID
		known[d.ID] = true
	}

	prior, err := o.resume(ctx, opts, known)
	if err != nil {
		return nil, err
	}

	var pending []Batch
	completed := 0
	for _, b := range batches {
		var remaining []documents.Document
		for _, d := range b.Documents {
			if _, done := prior[d.ID]; !done {
				remaining = append(remaining, d)
			}
		}
		if len(remaining) == 0 {
			completed++
			continue
		}
		pending = append(pending, Batch{Index: b.Index, Documents: remaining})
	}

	c := newCommitter(o.store, opts.RunID, order, prior, completed, len(batches), func(s Stats) {
		o.progress.Store(&s)
		if opts.OnProgress != nil {
			opts.OnProgress(s)
		}
	})
	o.active.Store(c)
	_, initial := c.snapshot()
	o.progress.Store(&initial)

	o.logger.InfoContext(
		ctx, "run started",
		"run_id", opts.RunID,
		"documents", len(docs),
		"batches", len(batches),
		"pending_batches", len(pending),
		"resumed_documents", len(prior),
		"workers", opts.Workers,
	)

	runErr := o.dispatch(ctx, pending, opts.Workers, c)
	results, stats := c.snapshot()

	if runErr != nil {
		o.logger.ErrorContext(ctx, "run failed", "run_id", opts.RunID, "error", runErr)
		return results, runErr
	}

	if !c.complete() {
		o.logger.WarnContext(
			ctx, "run interrupted, checkpoint kept",
			"run_id", opts.RunID,
			"completed", stats.Completed,
			"total", stats.Total,
		)
		err := fmt.Errorf("%w: %d of %d documents complete", ErrInterrupted, stats.Completed, stats.Total)
		if cause := context.Cause(ctx); cause != nil {
			err = fmt.Errorf("%w: %w", err, cause)
		}
		return results, err
	}

	if err := o.store.Delete(context.WithoutCancel(ctx), opts.RunID); err != nil {
		o.logger.WarnContext(ctx, "checkpoint delete failed", "run_id", opts.RunID, "error", err)
	}

	o.logger.InfoContext(
		ctx, "run complete",
		"run_id", opts.RunID,
		"documents", stats.Completed,
		"agreements", stats.Agreements,
		"disagreements", stats.Disagreements,
		"errors", stats.Errors,
	)

	return results, nil
}

func (o *Orchestrator) resume(ctx context.Context, opts Options, known map[string]bool) (map[string]compare.DualResult, error) {
	cp, err := o.store.Load(context.WithoutCancel(ctx), opts.RunID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		if opts.RequireCheckpoint {
			return nil, fmt.Errorf("%w: %s", ErrNoCheckpoint, opts.RunID)
		}
		return make(map[string]compare.DualResult), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	prior := cp.Completed()
	for id := range prior {
		if !known[id] {
			o.logger.WarnContext(ctx, "checkpoint result for unknown document dropped", "run_id", opts.RunID, "document_id", id)
			delete(prior, id)
		}
	}

	o.logger.InfoContext(
		ctx, "resuming from checkpoint",
		"run_id", opts.RunID,
		"completed_batches", cp.CompletedBatches,
		"completed_documents", len(prior),
	)
	return prior, nil
}

// dispatch feeds pending batches to the worker pool until they run out,
// ctx is cancelled, or a worker fails. Batches already handed to a worker
// run to completion under a context detached from ctx cancellation.
func (o *Orchestrator) dispatch(ctx context.Context, pending []Batch, workers int, c *committer) error {
	if len(pending) == 0 {
		return nil
	}

	work := context.WithoutCancel(ctx)
	jobs := make(chan Batch)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, b := range pending {
			if gctx.Err() != nil {
				return nil
			}
			select {
			case <-gctx.Done():
				return nil
			case jobs <- b:
			}
		}
		return nil
	})

	for w := range min(workers, len(pending)) {
		g.Go(func() error {
			comparer, err := o.factory(w)
			if err != nil {
				return fmt.Errorf("worker %d: create comparator: %w", w, err)
			}

			for b := range jobs {
				if gctx.Err() != nil {
					return nil
				}

				results := o.process(work, comparer, w, b)
				if err := c.commit(work, b, results); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func (o *Orchestrator) process(ctx context.Context, comparer Comparer, worker int, b Batch) []compare.DualResult {
	o.logger.DebugContext(ctx, "batch started", "batch", b.Index, "worker", worker, "documents", len(b.Documents))

	results := make([]compare.DualResult, 0, len(b.Documents))
	for _, doc := range b.Documents {
		results = append(results, comparer.ClassifyBoth(ctx, doc))
	}

	o.logger.InfoContext(ctx, "batch complete", "batch", b.Index, "worker", worker, "documents", len(results))
	return results
}
