package registry

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrUnknownPerson   = errors.New("unknown person")
	ErrDuplicatePerson = errors.New("duplicate person")
	ErrInvalidPerson   = errors.New("invalid person")
)
