package metrics

import "errors"

// ErrObserveFailed wraps failures while gathering registered metric families.
var ErrObserveFailed = errors.New("metrics observe failed")
