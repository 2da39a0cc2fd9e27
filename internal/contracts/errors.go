package contracts

import "errors"

var (
	// ErrNotFound is returned by providers for unknown symbols
	ErrNotFound = errors.New("not found")
	// ErrInsufficientData marks a history shorter than MinBars
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnorderedBars marks a series whose dates are not strictly increasing
	ErrUnorderedBars = errors.New("bars not strictly increasing")
)
