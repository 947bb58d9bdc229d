package history

// Option applies a configuration option to a History.
type Option func(*History)

// WithCapacity bounds how many samples the window retains. Lifetime
// aggregates are unaffected.
func WithCapacity(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.capacity = n
		}
	}
}
