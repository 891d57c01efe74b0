package catalog

import "errors"

var (
	// ErrBoundRequired is returned when a range filter has neither bound.
	ErrBoundRequired = errors.New("catalog: range filter requires at least one bound")

	// ErrInvertedRange is returned when a range filter's minimum exceeds
	// its maximum.
	ErrInvertedRange = errors.New("catalog: range minimum exceeds maximum")
)
