package service

import "errors"

// Sentinel kinds for search errors.
var (
	// ErrInfeasible means the configuration cannot produce any grouping;
	// the search is not started.
	ErrInfeasible = errors.New("infeasible search")

	// ErrNoSolution means every candidate was filtered out.
	ErrNoSolution = errors.New("no solution found")
)
