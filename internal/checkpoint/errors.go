package checkpoint

import "errors"

var (
	ErrNotFound       = errors.New("checkpoint not found")
	ErrInvalidRunID   = errors.New("invalid run id")
	ErrCorrupt        = errors.New("checkpoint corrupt")
	ErrUnknownBackend = errors.New("unknown checkpoint backend")
)
