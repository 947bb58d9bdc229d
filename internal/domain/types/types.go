// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/pelota/internal/domain/tuning"
)

// Entry represents a ranking board entry
type Entry struct {
	Rank      int     `json:"rank"`
	PlayerID  string  `json:"player_id"`
	BestScore float64 `json:"best_score"`
	Tier      string  `json:"tier"`
	Games     int     `json:"games"`
}

// TuningUpdate is pushed to live subscribers whenever a player's
// difficulty parameters change.
type TuningUpdate struct {
	PlayerID string        `json:"player_id"`
	Tier     string        `json:"tier"`
	Tuning   tuning.Bundle `json:"tuning"`
	At       time.Time     `json:"at"`
}

// PlayerProfile is the aggregate view of a single player's history
// together with the parameters currently assigned to them.
type PlayerProfile struct {
	PlayerID           string         `json:"player_id"`
	Tier               string         `json:"tier"`
	Games              int            `json:"games"`
	BestScore          float64        `json:"best_score"`
	AvgScore           float64        `json:"avg_score"`
	AvgDurationSeconds float64        `json:"avg_duration_seconds"`
	DeathCauses        map[string]int `json:"death_causes,omitempty"`
	PreferredMove      string         `json:"preferred_move,omitempty"`
	PredictedMove      string         `json:"predicted_move,omitempty"`
	Tuning             tuning.Bundle  `json:"tuning"`
}

// CorrelationRow is one metric pair in a correlation report. Band
// describes the magnitude only; the sign travels in Direction.
type CorrelationRow struct {
	Metric       string  `json:"metric"`
	Coefficient  float64 `json:"coefficient"`
	Significance float64 `json:"significance"`
	Band         string  `json:"band"`
	Direction    string  `json:"direction"`
	Samples      int     `json:"samples"`
	Defined      bool    `json:"defined"`
	Note         string  `json:"note,omitempty"`
}

// CorrelationReport summarizes how market price moved against space
// weather metrics over a window of days.
type CorrelationReport struct {
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Days        int              `json:"days"`
	PriceOrigin string           `json:"price_origin"`
	SolarOrigin string           `json:"solar_origin"`
	Rows        []CorrelationRow `json:"rows"`
	Insights    []string         `json:"insights"`
	Caveat      string           `json:"caveat"`
	GeneratedAt time.Time        `json:"generated_at"`
}
