package entities

import "errors"

var (
	// ErrInvalidDictionary indicates a dictionary failed validation.
	ErrInvalidDictionary = errors.New("invalid entity dictionary")
	// ErrUnknownEntity indicates a canonical name is not in the dictionary.
	ErrUnknownEntity = errors.New("unknown entity")
)
