package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrBadFlag        = errors.New("invalid presenter flag")
)
