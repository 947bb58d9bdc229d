package organize

import "errors"

// Sentinel kinds for organize errors.
var (
	ErrNotDirectory = errors.New("not a directory")
	ErrBadRules     = errors.New("invalid rules file")
)
