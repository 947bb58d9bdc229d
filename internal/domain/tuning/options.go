package tuning

import "github.com/okian/pelota/internal/domain/skill"

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithEnvelope overrides one tier's envelope. Envelopes with inverted
// bounds are ignored.
func WithEnvelope(tier skill.Tier, env Envelope) Option {
	return func(a *Adapter) {
		if env.MinSpeed > env.MaxSpeed || env.MinAssist > env.MaxAssist {
			return
		}
		a.envelopes[tier] = env
	}
}
