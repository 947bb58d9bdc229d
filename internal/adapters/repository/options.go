// Package repository provides session sample persistence and the
// in-memory ranking board.
package repository

import "time"

// Option applies a configuration option to the TreapBoard.
type Option func(*TreapBoard)

// WithMetricsUpdateInterval overrides how often the board refreshes its
// size gauge in the background.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(b *TreapBoard) {
		if interval > 0 {
			b.metricsUpdateInterval = interval
		}
	}
}
