package worker

import "errors"

// ErrStopped reports a Shutdown call on a worker or pool that was already
// stopped.
var ErrStopped = errors.New("worker stopped")
