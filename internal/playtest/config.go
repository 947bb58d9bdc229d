package playtest

import "time"

// DefaultSettle is how long a run waits after submitting before it
// reads tunings back, giving the pipeline time to drain.
const DefaultSettle = 3 * time.Second

// Config holds configuration for a play test run.
type Config struct {
	BaseURL           string        // Base URL of the service
	Players           int           // Number of synthetic players
	SessionsPerPlayer int           // Sessions submitted per player
	TopN              int           // Number of board entries to fetch
	Workers           int           // Number of concurrent workers
	Timeout           time.Duration // HTTP request timeout
	Settle            time.Duration // Wait between submit and verify
	OutputFile        string        // Output file for generated sessions
	LogFile           string        // Log file for test output
	Verbose           bool          // Enable verbose logging
}

// Session mirrors the POST /sessions wire shape.
type Session struct {
	SampleID        string   `json:"sample_id"`
	PlayerID        string   `json:"player_id"`
	Score           float64  `json:"score"`
	DurationSeconds float64  `json:"duration_seconds"`
	Moves           []string `json:"moves"`
	DeathCause      string   `json:"death_cause"`
	TS              string   `json:"ts"`
}

// Entry mirrors a ranking board entry.
type Entry struct {
	Rank      int     `json:"rank"`
	PlayerID  string  `json:"player_id"`
	BestScore float64 `json:"best_score"`
	Tier      string  `json:"tier"`
	Games     int     `json:"games"`
}

// Bundle mirrors the tuning parameter bundle.
type Bundle struct {
	Speed           float64 `json:"speed"`
	AssistFrequency float64 `json:"assist_frequency"`
}

// TuningUpdate mirrors GET /players/{id}/tuning.
type TuningUpdate struct {
	PlayerID string `json:"player_id"`
	Tier     string `json:"tier"`
	Tuning   Bundle `json:"tuning"`
}

// PlayerPlan is one synthetic player together with the sessions that
// were generated for them and the tier those sessions should produce.
type PlayerPlan struct {
	PlayerID     string
	ExpectedTier string
	Sessions     []Session
}

// Stats holds play test statistics.
type Stats struct {
	PlayersGenerated   int
	SessionsGenerated  int
	SessionsSubmitted  int
	SessionsSuccessful int
	SessionsDuplicate  int
	SessionsFailed     int
	TuningsRetrieved   int
	TierMatches        int
	TierMismatches     int
	EnvelopeViolations int
	BoardEntries       int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
