package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/JaimeStill/screener/pkg/storage"
)

const contentType = "application/json"

// BlobStore keeps one JSON blob per run. Uploads replace the blob whole, so
// readers never observe a partially written checkpoint.
type BlobStore struct {
	blobs storage.System
}

// NewBlobStore creates a store over an object storage system.
func NewBlobStore(blobs storage.System) *BlobStore {
	return &BlobStore{blobs: blobs}
}

func key(runID string) string {
	return runID + ".json"
}

func (b *BlobStore) Save(ctx context.Context, cp *Checkpoint) error {
	data, err := encode(cp)
	if err != nil {
		return err
	}
	if err := b.blobs.Put(ctx, key(cp.RunID), data, contentType); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.RunID, err)
	}
	return nil
}

func (b *BlobStore) Load(ctx context.Context, runID string) (*Checkpoint, error) {
	if err := ValidateRunID(runID); err != nil {
		return nil, err
	}

	data, err := b.blobs.Get(ctx, key(runID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", runID, err)
	}

	return decode(runID, data)
}

func (b *BlobStore) Delete(ctx context.Context, runID string) error {
	if err := ValidateRunID(runID); err != nil {
		return err
	}

	err := b.blobs.Delete(ctx, key(runID))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete checkpoint %s: %w", runID, err)
	}
	return nil
}
