// Package tuning derives game parameter bundles from skill tiers and
// short-term scoring trend, bounded by per-tier envelopes.
package tuning

import (
	"github.com/okian/pelota/internal/domain/skill"
)

// Trend adjustment constants. Ratios compare the latest score against the
// lifetime average; boosts and drops move speed off the tier base.
const (
	surgeRatio           = 1.2
	slumpRatio           = 0.8
	struggleRatio        = 0.7
	surgeBoost           = 3.0
	slumpDrop            = 2.0
	assistStruggleFactor = 1.5
)

// Global parameter limits, applied after the tier envelope.
const (
	globalSpeedFloor   = 6.0
	globalSpeedCap     = 25.0
	maxAssistFrequency = 1.0
)

// Bundle is the parameter set handed to the game loop.
type Bundle struct {
	Speed           float64 `json:"speed"`
	AssistFrequency float64 `json:"assist_frequency"`
}

// Envelope bounds the parameters a tier may produce. A tier never yields a
// bundle outside its [min, max] ranges.
type Envelope struct {
	BaseSpeed  float64
	MinSpeed   float64
	MaxSpeed   float64
	BaseAssist float64
	MinAssist  float64
	MaxAssist  float64
}

// Trend summarizes recent scoring movement: the latest score against the
// running average before it.
type Trend struct {
	Latest  float64
	Average float64
}

// defaultEnvelopes mirrors the tier table: base speeds 8/12/16/20 with a
// -2/+3 corridor, assist frequency easing off as skill rises.
func defaultEnvelopes() map[skill.Tier]Envelope {
	tiers := map[skill.Tier]struct {
		speed  float64
		assist float64
	}{
		skill.TierBeginner:     {speed: 8, assist: 0.4},
		skill.TierIntermediate: {speed: 12, assist: 0.3},
		skill.TierAdvanced:     {speed: 16, assist: 0.3},
		skill.TierExpert:       {speed: 20, assist: 0.2},
	}

	envelopes := make(map[skill.Tier]Envelope, len(tiers))
	for tier, base := range tiers {
		envelopes[tier] = Envelope{
			BaseSpeed:  base.speed,
			MinSpeed:   maxf(base.speed-slumpDrop, globalSpeedFloor),
			MaxSpeed:   minf(base.speed+surgeBoost, globalSpeedCap),
			BaseAssist: base.assist,
			MinAssist:  base.assist,
			MaxAssist:  minf(base.assist*assistStruggleFactor, maxAssistFrequency),
		}
	}
	return envelopes
}

// Adapter maps tiers to parameter bundles inside fixed envelopes. Pure
// lookup plus clamped trend nudges; no state.
type Adapter struct {
	envelopes map[skill.Tier]Envelope
}

// New creates an adapter with the default tier envelopes.
func New(opts ...Option) *Adapter {
	a := &Adapter{envelopes: defaultEnvelopes()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Envelope returns a tier's bounds. Unknown tiers borrow the beginner
// envelope so a bad tier can never unlock expert parameters.
func (a *Adapter) Envelope(tier skill.Tier) Envelope {
	if env, ok := a.envelopes[tier]; ok {
		return env
	}
	return a.envelopes[skill.TierBeginner]
}

// ForTier returns the base bundle for a tier, untouched by trend.
func (a *Adapter) ForTier(tier skill.Tier) Bundle {
	return a.Adapt(tier, Trend{})
}

// Adapt nudges the tier's base bundle by recent trend. A surge past the
// average raises speed, a slump lowers it, and a struggling player gets
// more assistance. The result always stays inside the tier envelope and
// the global limits. A zero average means no usable trend.
func (a *Adapter) Adapt(tier skill.Tier, trend Trend) Bundle {
	env := a.Envelope(tier)

	speed := env.BaseSpeed
	assist := env.BaseAssist

	if trend.Average > 0 {
		switch {
		case trend.Latest > surgeRatio*trend.Average:
			speed += surgeBoost
		case trend.Latest < slumpRatio*trend.Average:
			speed -= slumpDrop
		}
		if trend.Latest < struggleRatio*trend.Average {
			assist *= assistStruggleFactor
		}
	}

	speed = clamp(speed, env.MinSpeed, env.MaxSpeed)
	speed = clamp(speed, globalSpeedFloor, globalSpeedCap)

	assist = clamp(assist, env.MinAssist, env.MaxAssist)
	if assist > maxAssistFrequency {
		assist = maxAssistFrequency
	}

	return Bundle{Speed: speed, AssistFrequency: assist}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
