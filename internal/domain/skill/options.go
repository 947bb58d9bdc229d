package skill

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithWindow sets how many recent samples feed the averages.
func WithWindow(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.window = n
		}
	}
}

// WithMinSamples sets the cold-start threshold below which classification
// always returns beginner.
func WithMinSamples(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.minSamples = n
		}
	}
}

// WithRules replaces the rule table. Rules are evaluated in the given
// order, so higher tiers must come first.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		if len(rules) == 0 {
			return
		}
		owned := make([]Rule, len(rules))
		copy(owned, rules)
		c.rules = owned
	}
}
