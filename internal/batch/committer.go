package batch

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/JaimeStill/screener/internal/checkpoint"
	"github.com/JaimeStill/screener/internal/compare"
)

// committer is the single writer of the run checkpoint. Each commit folds a
// whole batch into the result index and persists it before the batch counts
// as complete. After a failed save it refuses every later commit.
type committer struct {
	mu        sync.Mutex
	store     checkpoint.Store
	runID     string
	order     []string
	results   map[string]compare.DualResult
	completed int
	total     int
	failed    error
	stats     Stats
	onCommit  func(Stats)
}

func newCommitter(
	store checkpoint.Store,
	runID string,
	order []string,
	prior map[string]compare.DualResult,
	completed, total int,
	onCommit func(Stats),
) *committer {
	c := &committer{
		store:     store,
		runID:     runID,
		order:     order,
		results:   prior,
		completed: completed,
		total:     total,
		onCommit:  onCommit,
	}
	c.stats = Summarize(c.ordered(c.results), len(order), total, completed)
	return c
}

func (c *committer) commit(ctx context.Context, b Batch, results []compare.DualResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failed != nil {
		return c.failed
	}

	staged := maps.Clone(c.results)
	for _, r := range results {
		staged[r.DocumentID] = r
	}
	ordered := c.ordered(staged)

	cp := &checkpoint.Checkpoint{
		RunID:            c.runID,
		Results:          ordered,
		CompletedBatches: c.completed + 1,
		TotalBatches:     c.total,
		UpdatedAt:        time.Now().UTC(),
	}

	if err := c.store.Save(ctx, cp); err != nil {
		c.failed = fmt.Errorf("%w: batch %d: %w", ErrCheckpointWrite, b.Index, err)
		return c.failed
	}

	c.results = staged
	c.completed++
	c.stats = Summarize(ordered, len(c.order), c.total, c.completed)

	if c.onCommit != nil {
		c.onCommit(c.stats)
	}
	return nil
}

// ordered returns the results in original document order.
func (c *committer) ordered(index map[string]compare.DualResult) []compare.DualResult {
	out := make([]compare.DualResult, 0, len(index))
	for _, id := range c.order {
		if r, ok := index[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (c *committer) snapshot() ([]compare.DualResult, Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ordered(c.results), c.stats
}

func (c *committer) complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results) == len(c.order)
}
