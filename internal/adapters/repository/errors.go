package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("player not found")
	ErrInvalidLimit  = errors.New("invalid ranking limit")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrQueryFailed   = errors.New("store query failed")
)
