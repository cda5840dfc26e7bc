package documents

import "errors"

var (
	// ErrMissingID indicates a document without an identifier.
	ErrMissingID = errors.New("document id required")
	// ErrDuplicateID indicates two documents share an identifier.
	ErrDuplicateID = errors.New("duplicate document id")
	// ErrEmptySource indicates the input contained no documents.
	ErrEmptySource = errors.New("no documents in source")
)
