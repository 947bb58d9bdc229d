package playtest

import (
	"fmt"
	"log"
	"sort"
)

// Tuning envelope bounds the service guarantees for any bundle.
const (
	envelopeSpeedMin  = 6.0
	envelopeSpeedMax  = 25.0
	envelopeAssistMax = 1.0
)

// verifyResults checks tier assignment against each player's archetype
// and the ranking board against its own ordering rules. Mismatches are
// reported rather than fatal since the service may still be draining
// the queue; only a complete absence of results fails the run.
func verifyResults(config *Config, plans []PlayerPlan, tunings []*TuningUpdate, board []Entry, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if stats.TuningsRetrieved == 0 {
		return fmt.Errorf("no tuning updates to verify")
	}

	verifyTiers(plans, tunings, stats, config.Verbose)

	if len(board) > 0 {
		if err := verifyBoardOrder(board); err != nil {
			log.Printf("⚠️  Board consistency warning: %v", err)
		} else {
			log.Println("✅ Board ordering verified")
		}
	}

	displayTierBreakdown(tunings, board, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyTiers compares the served tier and bundle for each player with
// the archetype that generated their sessions.
func verifyTiers(plans []PlayerPlan, tunings []*TuningUpdate, stats *Stats, verbose bool) {
	for i, plan := range plans {
		update := tunings[i]
		if update == nil {
			continue
		}

		if update.Tier == plan.ExpectedTier {
			stats.TierMatches++
		} else {
			stats.TierMismatches++
			if verbose {
				log.Printf("⚠️  Tier mismatch for %s: expected %s, got %s",
					plan.PlayerID, plan.ExpectedTier, update.Tier)
			}
		}

		if !insideEnvelope(update.Tuning) {
			stats.EnvelopeViolations++
			log.Printf("⚠️  Bundle outside envelope for %s: speed=%.2f assist=%.2f",
				plan.PlayerID, update.Tuning.Speed, update.Tuning.AssistFrequency)
		}
	}

	log.Printf("✅ Tier verification: %d matches, %d mismatches, %d envelope violations",
		stats.TierMatches, stats.TierMismatches, stats.EnvelopeViolations)
}

// insideEnvelope reports whether a bundle obeys the global bounds.
func insideEnvelope(b Bundle) bool {
	return b.Speed >= envelopeSpeedMin && b.Speed <= envelopeSpeedMax &&
		b.AssistFrequency >= 0 && b.AssistFrequency <= envelopeAssistMax
}

// verifyBoardOrder checks that the board is sorted by best score
// descending and carries dense ranks, where tied scores share a rank
// and the next distinct score takes the rank right after.
func verifyBoardOrder(board []Entry) error {
	wantRank := 0
	for i, entry := range board {
		if i > 0 && entry.BestScore > board[i-1].BestScore {
			return fmt.Errorf("board not sorted: entry %d outscores entry %d", i, i-1)
		}
		if i == 0 || entry.BestScore != board[i-1].BestScore {
			wantRank++
		}
		if entry.Rank != wantRank {
			return fmt.Errorf("board rank %d at position %d, want %d", entry.Rank, i, wantRank)
		}
	}
	return nil
}

// displayTierBreakdown shows how many players landed in each tier and
// the top of the board.
func displayTierBreakdown(tunings []*TuningUpdate, board []Entry, verbose bool) {
	counts := make(map[string]int)
	for _, update := range tunings {
		if update != nil {
			counts[update.Tier]++
		}
	}

	tiers := make([]string, 0, len(counts))
	for tier := range counts {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)

	log.Println("📊 Tier breakdown:")
	for _, tier := range tiers {
		log.Printf("   %s: %d players", tier, counts[tier])
	}

	topN := 10
	if len(board) < topN {
		topN = len(board)
	}
	if topN > 0 {
		log.Printf("🥇 Top %d board entries:", topN)
		for i := 0; i < topN; i++ {
			entry := board[i]
			log.Printf("   %d. %s - best %.1f (%s, %d games)",
				entry.Rank, entry.PlayerID, entry.BestScore, entry.Tier, entry.Games)
		}
	}

	if verbose && len(board) > 0 {
		sum := 0.0
		for _, entry := range board {
			sum += entry.BestScore
		}
		log.Printf("📊 Board best-score average: %.2f", sum/float64(len(board)))
	}
}
