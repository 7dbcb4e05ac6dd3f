package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrUnscoreable means a statistic had no qualifying member. The
	// candidate and history together cannot be scored.
	ErrUnscoreable = errors.New("unscoreable population")
	ErrNoBaseline  = errors.New("baseline stats are required")
)
