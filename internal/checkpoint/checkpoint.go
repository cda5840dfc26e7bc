// Package checkpoint persists the resumable progress of a batch run.
// A checkpoint is keyed by run identifier and overwritten after every batch
// commit; stores must tolerate repeated saves of the same run.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/screener/internal/compare"
)

// Checkpoint is the persisted state of one run. Results are kept in
// original document order.
type Checkpoint struct {
	RunID            string               `json:"run_id"`
	Results          []compare.DualResult `json:"results"`
	CompletedBatches int                  `json:"completed_batches"`
	TotalBatches     int                  `json:"total_batches"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// Completed returns the set of document identifiers with a recorded result.
func (c *Checkpoint) Completed() map[string]compare.DualResult {
	done := make(map[string]compare.DualResult, len(c.Results))
	for _, r := range c.Results {
		done[r.DocumentID] = r
	}
	return done
}

// Store persists checkpoints. Save overwrites any existing checkpoint for
// the run. Load returns ErrNotFound when none exists. Delete succeeds when
// the checkpoint is already absent.
type Store interface {
	Save(ctx context.Context, cp *Checkpoint) error
	Load(ctx context.Context, runID string) (*Checkpoint, error)
	Delete(ctx context.Context, runID string) error
}

// ValidateRunID rejects identifiers that are empty or could escape a
// directory or key prefix.
func ValidateRunID(runID string) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidRunID)
	}
	if strings.ContainsAny(runID, `/\`) || strings.Contains(runID, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return nil
}

func encode(cp *Checkpoint) ([]byte, error) {
	if err := ValidateRunID(cp.RunID); err != nil {
		return nil, err
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint %s: %w", cp.RunID, err)
	}
	return data, nil
}

func decode(runID string, data []byte) (*Checkpoint, error) {
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, runID, err)
	}
	if cp.RunID != runID {
		return nil, fmt.Errorf("%w: %s holds run %q", ErrCorrupt, runID, cp.RunID)
	}
	return &cp, nil
}
