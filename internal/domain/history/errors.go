package history

import "errors"

// Sentinel kinds for history errors.
var (
	// ErrFrozen is returned when mutating a Stats value that others clone from.
	ErrFrozen = errors.New("stats are frozen")
)
