package playtest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pelota/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// archetype describes a synthetic player profile. Score and duration
// ranges sit strictly inside one tier's band, so every player's average
// over any number of sessions lands in the tier the archetype names.
type archetype struct {
	tier          string
	scoreMin      float64
	scoreRange    float64
	durationMin   float64
	durationRange float64
}

var archetypes = []archetype{
	{tier: "beginner", scoreMin: 5, scoreRange: 40, durationMin: 8, durationRange: 20},
	{tier: "intermediate", scoreMin: 60, scoreRange: 35, durationMin: 35, durationRange: 20},
	{tier: "advanced", scoreMin: 110, scoreRange: 80, durationMin: 65, durationRange: 50},
	{tier: "expert", scoreMin: 210, scoreRange: 190, durationMin: 125, durationRange: 115},
}

var moveSet = []string{"up", "down", "left", "right"}

var deathCauses = []string{"wall_collision", "self_collision"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomIndex returns a random index in [0, n).
func getRandomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generatePlayers creates player plans with unique IDs, cycling through
// the archetypes so every tier is represented.
func generatePlayers(ctx context.Context, config *Config, stats *Stats) ([]PlayerPlan, error) {
	logger.Get().Info(ctx, "generating synthetic players",
		logger.Int("players", config.Players),
		logger.Int("sessionsPerPlayer", config.SessionsPerPlayer))

	plans := make([]PlayerPlan, config.Players)

	// Generate plans concurrently
	type planResult struct {
		index int
		plan  PlayerPlan
		err   error
	}

	resultChan := make(chan planResult, config.Players)

	workerCount := min(config.Workers, config.Players)
	plansPerWorker := config.Players / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * plansPerWorker
		end := start + plansPerWorker
		if worker == workerCount-1 {
			end = config.Players // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- planResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- planResult{index: i, plan: generateSinglePlayer(i, config.SessionsPerPlayer)}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.Players; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during player generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate player %d: %w", result.index, result.err)
			}
			plans[result.index] = result.plan
		}
	}

	stats.PlayersGenerated = len(plans)
	for _, p := range plans {
		stats.SessionsGenerated += len(p.Sessions)
	}
	logger.Get().Info(ctx, "generated players successfully",
		logger.Int("players", len(plans)),
		logger.Int("sessions", stats.SessionsGenerated))

	return plans, nil
}

// generateSinglePlayer creates one player plan. The archetype cycles
// with the index so the tier mix is even regardless of player count.
func generateSinglePlayer(index, sessions int) PlayerPlan {
	arch := archetypes[index%len(archetypes)]
	playerID := "p-" + uuid.New().String()

	plan := PlayerPlan{
		PlayerID:     playerID,
		ExpectedTier: arch.tier,
		Sessions:     make([]Session, sessions),
	}
	for i := 0; i < sessions; i++ {
		plan.Sessions[i] = generateSingleSession(playerID, arch)
	}
	return plan
}

// generateSingleSession creates one session inside the archetype's band.
func generateSingleSession(playerID string, arch archetype) Session {
	score := arch.scoreMin + getRandomFloat()*arch.scoreRange
	duration := arch.durationMin + getRandomFloat()*arch.durationRange

	return Session{
		SampleID:        uuid.New().String(),
		PlayerID:        playerID,
		Score:           score,
		DurationSeconds: duration,
		Moves:           generateMoves(),
		DeathCause:      deathCauses[getRandomIndex(len(deathCauses))],
		TS:              time.Now().UTC().Format(time.RFC3339),
	}
}

// generateMoves produces a short random walk without immediate reversals.
func generateMoves() []string {
	length := 5 + getRandomIndex(10)
	moves := make([]string, length)
	last := -1
	for i := range moves {
		next := getRandomIndex(len(moveSet))
		if last >= 0 && isReversal(last, next) {
			next = (next + 1) % len(moveSet)
		}
		moves[i] = moveSet[next]
		last = next
	}
	return moves
}

// isReversal reports whether two moveSet indices are opposite directions.
func isReversal(a, b int) bool {
	// moveSet order is up, down, left, right: 0<->1 and 2<->3 reverse.
	return a^1 == b
}
