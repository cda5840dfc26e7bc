package batch

import "errors"

var (
	// ErrCheckpointWrite indicates a batch could not be persisted. The run
	// stops and no later batch is committed.
	ErrCheckpointWrite = errors.New("checkpoint write failed")
	// ErrInterrupted indicates the run stopped before every batch completed.
	// The checkpoint is left in place for a resumed run.
	ErrInterrupted = errors.New("run interrupted")
	// ErrNoCheckpoint indicates a resume was requested but no checkpoint exists.
	ErrNoCheckpoint = errors.New("no checkpoint to resume")
	// ErrInvalidOptions indicates unusable run options.
	ErrInvalidOptions = errors.New("invalid run options")
)
