package series

import (
	"errors"
)

// Sentinel kinds for series errors.
var (
	ErrEmptyInput          = errors.New("empty input")
	ErrMisalignedLengths   = errors.New("misaligned lengths")
	ErrOutOfRange          = errors.New("out of range")
	ErrInsufficientOverlap = errors.New("insufficient overlap")
)
