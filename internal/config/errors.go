package config

import "errors"

// Errors callers can match with errors.Is: ErrLoadConfig covers file and
// environment layering failures, ErrInvalidConfig covers validation.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
)
