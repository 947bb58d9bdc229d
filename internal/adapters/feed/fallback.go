package feed

import (
	"context"
	"errors"

	metrics "github.com/okian/pelota/pkg/metrics"
)

// Fallback tries a primary feed and degrades to a backup when the
// primary fails. The result origin reports which source actually
// produced the data, so reports can label degraded windows.
type Fallback struct {
	primary Feed
	backup  Feed
}

// NewFallback wires a primary feed to its backup.
func NewFallback(primary, backup Feed) *Fallback {
	return &Fallback{primary: primary, backup: backup}
}

// Name returns the primary feed's series name.
func (f *Fallback) Name() string {
	return f.primary.Name()
}

// Fetch returns the primary result when it succeeds, otherwise the
// backup result. When both fail the errors are joined so the caller
// sees the full picture.
func (f *Fallback) Fetch(ctx context.Context, days int) Result {
	res := f.primary.Fetch(ctx, days)
	if res.Err == nil && res.Series != nil {
		return res
	}

	metrics.RecordFeedFallback(f.Name())
	backup := f.backup.Fetch(ctx, days)
	if backup.Err != nil {
		backup.Err = errors.Join(res.Err, backup.Err)
	}
	return backup
}
