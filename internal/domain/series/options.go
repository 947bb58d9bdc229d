package series

import "time"

// DefaultTolerance is the widest timestamp distance treated as a match,
// sized for daily-resolution feeds.
const DefaultTolerance = 24 * time.Hour

// AlignOption applies a configuration option to alignment.
type AlignOption func(*alignConfig)

type alignConfig struct {
	tolerance time.Duration
}

// WithTolerance sets the maximum timestamp distance for a match.
func WithTolerance(d time.Duration) AlignOption {
	return func(c *alignConfig) {
		if d > 0 {
			c.tolerance = d
		}
	}
}
