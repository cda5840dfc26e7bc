package oracle

import "errors"

var (
	// ErrAssessFailed indicates the oracle call itself failed (transport, timeout, provider error).
	ErrAssessFailed = errors.New("oracle call failed")
	// ErrMissingCriteria indicates a parsed response omitted requested criteria.
	ErrMissingCriteria = errors.New("missing criteria")
	// ErrInvalidCriterion indicates a criterion entry could not be interpreted.
	ErrInvalidCriterion = errors.New("invalid criterion data")
	// ErrUnknownProvider indicates an unsupported oracle provider kind.
	ErrUnknownProvider = errors.New("unknown oracle provider")
)
