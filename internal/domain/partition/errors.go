package partition

import "errors"

// Sentinel kinds for partition errors.
var (
	ErrInvalidSize        = errors.New("invalid group size")
	ErrIndivisible        = errors.New("population not divisible by group size")
	ErrNoSizeTemplate     = errors.New("no size template for population")
	ErrInfeasibleTemplate = errors.New("size template cannot balance presenters")
)
