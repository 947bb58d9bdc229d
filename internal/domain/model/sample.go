// Package model contains domain models passed between layers.
package model

import "time"

// Sample represents one finished game session submitted by clients.
// Fields mirror the OpenAPI schema for /sessions.
type Sample struct {
	SampleID        string    // unique id for idempotency
	PlayerID        string    // subject/player identifier
	Score           float64   // final session score
	DurationSeconds float64   // session length in seconds
	Moves           []string  // ordered movement inputs, e.g., "up", "left"
	DeathCause      string    // what ended the session, e.g., "wall", "self"
	TS              time.Time // session end timestamp
}

// PlayerBest captures a player's best score used for ranking.
type PlayerBest struct {
	PlayerID string
	Score    float64
}
