// Package skill classifies a rolling window of performance samples into
// discrete tiers via an ordered rule table.
package skill

import (
	"github.com/okian/pelota/internal/domain/model"
)

// Default classification window configuration.
const (
	defaultWindow     = 10
	defaultMinSamples = 3
)

// Tier is a discrete skill bucket. Ordering is meaningful: higher tiers
// compare greater.
type Tier int

// Tiers in ascending order of skill.
const (
	TierBeginner Tier = iota
	TierIntermediate
	TierAdvanced
	TierExpert
)

// String returns the tier name used in output and metric labels.
func (t Tier) String() string {
	switch t {
	case TierIntermediate:
		return "intermediate"
	case TierAdvanced:
		return "advanced"
	case TierExpert:
		return "expert"
	case TierBeginner:
		return "beginner"
	default:
		return "unknown"
	}
}

// Rule grants a tier when both window averages strictly exceed its minimums.
type Rule struct {
	Tier           Tier
	MinAvgScore    float64
	MinAvgDuration float64
}

// DefaultRules is evaluated top to bottom; the first match wins, so higher
// tiers must come first. Averages that match nothing fall back to beginner.
func DefaultRules() []Rule {
	return []Rule{
		{Tier: TierExpert, MinAvgScore: 200, MinAvgDuration: 120},
		{Tier: TierAdvanced, MinAvgScore: 100, MinAvgDuration: 60},
		{Tier: TierIntermediate, MinAvgScore: 50, MinAvgDuration: 30},
	}
}

// Classifier applies an ordered rule table over a rolling sample window.
// Classification is deterministic; there is no randomness involved.
type Classifier struct {
	window     int
	minSamples int
	rules      []Rule
}

// New creates a classifier with the default window and rule table.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		window:     defaultWindow,
		minSamples: defaultMinSamples,
		rules:      DefaultRules(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify maps a player's samples to a tier using averages over the most
// recent window. With fewer samples than the cold-start minimum it returns
// beginner regardless of values. A nil history is treated as empty.
func (c *Classifier) Classify(samples []model.Sample) Tier {
	if len(samples) < c.minSamples {
		return TierBeginner
	}

	window := samples
	if len(window) > c.window {
		window = window[len(window)-c.window:]
	}

	var scoreSum, durationSum float64
	for _, s := range window {
		scoreSum += s.Score
		durationSum += s.DurationSeconds
	}
	n := float64(len(window))

	return c.classify(scoreSum/n, durationSum/n)
}

// classify walks the rule table top to bottom.
func (c *Classifier) classify(avgScore, avgDuration float64) Tier {
	for _, r := range c.rules {
		if avgScore > r.MinAvgScore && avgDuration > r.MinAvgDuration {
			return r.Tier
		}
	}
	return TierBeginner
}
