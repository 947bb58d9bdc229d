package playtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/pelota/pkg/logger"
)

// Run executes a complete play test: generate synthetic players,
// submit their sessions, let the pipeline settle, read tunings and
// rankings back, verify them, and archive what was generated.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	client := newAPIClient(config.BaseURL, config.Timeout)

	logger.Get().Info(ctx, "starting play test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.Players),
		logger.Int("sessionsPerPlayer", config.SessionsPerPlayer),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Any("verbose", config.Verbose))

	if err := client.health(ctx); err != nil {
		return fmt.Errorf("service not healthy: %w", err)
	}

	plans, err := generatePlayers(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("generate players: %w", err)
	}
	if err := submitSessions(ctx, config, client, plans, stats); err != nil {
		return fmt.Errorf("submit sessions: %w", err)
	}

	logger.Get().Info(ctx, "letting the pipeline drain",
		logger.String("settle", config.Settle.String()))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(config.Settle):
	}

	tunings, err := retrieveTunings(ctx, config, client, plans, stats)
	if err != nil {
		return fmt.Errorf("fetch tunings: %w", err)
	}
	board, err := fetchBoard(ctx, config, client, stats)
	if err != nil {
		return fmt.Errorf("fetch board: %w", err)
	}
	if err := verifyResults(config, plans, tunings, board, stats); err != nil {
		return fmt.Errorf("verify results: %w", err)
	}

	if err := archiveSessions(ctx, config, plans); err != nil {
		logger.Get().Warn(ctx, "could not archive sessions", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(stats)

	logger.Get().Info(ctx, "play test completed")
	return nil
}

// archiveSessions writes every generated session to a JSON file so a
// run can be replayed or inspected later.
func archiveSessions(ctx context.Context, config *Config, plans []PlayerPlan) error {
	sessions := make([]Session, 0)
	for _, plan := range plans {
		sessions = append(sessions, plan.Sessions...)
	}
	if len(sessions) == 0 {
		return fmt.Errorf("no sessions to archive")
	}

	filename := config.OutputFile
	if filename == "" {
		filename = "generated_sessions_" + time.Now().Format("20060102_150405") + ".json"
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Get().Info(ctx, "sessions archived", logger.String("filename", filename))
	return nil
}

// logFinalStats emits the run summary.
func logFinalStats(stats *Stats) {
	var successRate, sessionsPerSecond float64
	if stats.SessionsSubmitted > 0 {
		successRate = float64(stats.SessionsSuccessful) / float64(stats.SessionsSubmitted) * 100
	}
	if stats.Duration > 0 {
		sessionsPerSecond = float64(stats.SessionsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("playersGenerated", stats.PlayersGenerated),
		logger.Int("sessionsGenerated", stats.SessionsGenerated),
		logger.Int("sessionsSubmitted", stats.SessionsSubmitted),
		logger.Int("sessionsSuccessful", stats.SessionsSuccessful),
		logger.Int("sessionsDuplicate", stats.SessionsDuplicate),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("tuningsRetrieved", stats.TuningsRetrieved),
		logger.Int("tierMatches", stats.TierMatches),
		logger.Int("tierMismatches", stats.TierMismatches),
		logger.Int("envelopeViolations", stats.EnvelopeViolations),
		logger.Int("boardEntries", stats.BoardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("sessionsPerSecond", sessionsPerSecond))
}
