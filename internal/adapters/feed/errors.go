package feed

import (
	"errors"
)

// Sentinel kinds for feed errors.
var (
	ErrFetchFailed  = errors.New("feed fetch failed")
	ErrDecodeFailed = errors.New("feed decode failed")
	ErrNoData       = errors.New("feed returned no usable data")
)
