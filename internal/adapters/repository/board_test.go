package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"
)

func TestTreapBoard_BasicOperations(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx)
	defer func() { _ = board.Close() }()

	// Test empty board
	if count := board.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	// Test recording first player
	improved, err := board.Record(ctx, "player1", 85.5, "intermediate", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !improved {
		t.Error("expected first record to improve")
	}

	if count := board.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	// Test rank query
	entry, err := board.Rank(ctx, "player1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 {
		t.Errorf("expected rank 1, got %d", entry.Rank)
	}
	if entry.BestScore != 85.5 {
		t.Errorf("expected best score 85.5, got %f", entry.BestScore)
	}
	if entry.Tier != "intermediate" {
		t.Errorf("expected tier intermediate, got %s", entry.Tier)
	}
	if entry.Games != 1 {
		t.Errorf("expected 1 game, got %d", entry.Games)
	}

	// Test TopN
	entries, err := board.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].PlayerID != "player1" {
		t.Errorf("expected player1, got %s", entries[0].PlayerID)
	}
}

func TestTreapBoard_ScoreUpdates(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx)
	defer func() { _ = board.Close() }()

	// Record initial score
	improved, err := board.Record(ctx, "player1", 50.0, "beginner", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !improved {
		t.Error("expected first record to improve")
	}

	// A lower score should not replace the best
	improved, err = board.Record(ctx, "player1", 40.0, "beginner", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if improved {
		t.Error("expected lower score not to improve")
	}

	// But tier and games still track the player's current state
	entry, err := board.Rank(ctx, "player1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.BestScore != 50.0 {
		t.Errorf("expected best to stay 50.0, got %f", entry.BestScore)
	}
	if entry.Games != 2 {
		t.Errorf("expected games updated to 2, got %d", entry.Games)
	}

	// A higher score replaces the best
	improved, err = board.Record(ctx, "player1", 90.0, "intermediate", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !improved {
		t.Error("expected higher score to improve")
	}

	entry, err = board.Rank(ctx, "player1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.BestScore != 90.0 {
		t.Errorf("expected best score 90.0, got %f", entry.BestScore)
	}
	if entry.Tier != "intermediate" {
		t.Errorf("expected tier intermediate, got %s", entry.Tier)
	}
}

func TestTreapBoard_Ordering(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx)
	defer func() { _ = board.Close() }()

	players := []struct {
		id    string
		score float64
	}{
		{"player1", 85.0},
		{"player2", 95.0},
		{"player3", 75.0},
		{"player4", 100.0},
		{"player5", 80.0},
	}

	for _, p := range players {
		if _, err := board.Record(ctx, p.id, p.score, "intermediate", 1); err != nil {
			t.Fatalf("unexpected error recording %s: %v", p.id, err)
		}
	}

	entries, err := board.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}

	// Verify descending order by score
	for i := 0; i < len(entries)-1; i++ {
		if entries[i].BestScore < entries[i+1].BestScore {
			t.Errorf("entries not in descending order: %f < %f", entries[i].BestScore, entries[i+1].BestScore)
		}
	}

	// Verify ranks are assigned correctly
	for i, entry := range entries {
		expectedRank := i + 1
		if entry.Rank != expectedRank {
			t.Errorf("entry %d: expected rank %d, got %d", i, expectedRank, entry.Rank)
		}
	}

	// Verify specific ordering
	expectedOrder := []string{"player4", "player2", "player1", "player5", "player3"}
	for i, expectedID := range expectedOrder {
		if entries[i].PlayerID != expectedID {
			t.Errorf("position %d: expected %s, got %s", i, expectedID, entries[i].PlayerID)
		}
	}
}

func TestTreapBoard_TieBreaking(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx)
	defer func() { _ = board.Close() }()

	if _, err := board.Record(ctx, "playerB", 100.0, "expert", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := board.Record(ctx, "playerA", 100.0, "expert", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := board.Record(ctx, "playerC", 90.0, "advanced", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := board.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// With same score, playerA comes before playerB (alphabetical)
	if entries[0].PlayerID != "playerA" {
		t.Errorf("expected playerA first, got %s", entries[0].PlayerID)
	}
	if entries[1].PlayerID != "playerB" {
		t.Errorf("expected playerB second, got %s", entries[1].PlayerID)
	}

	// Tied players share a rank; the next distinct score takes the
	// following rank.
	if entries[0].Rank != 1 || entries[1].Rank != 1 {
		t.Errorf("expected shared rank 1 for tie, got %d and %d", entries[0].Rank, entries[1].Rank)
	}
	if entries[2].Rank != 2 {
		t.Errorf("expected rank 2 after tie, got %d", entries[2].Rank)
	}
}

func TestTreapBoard_InvalidLimit(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx)
	defer func() { _ = board.Close() }()

	if _, err := board.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := board.TopN(ctx, -5); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestTreapBoard_UnknownPlayer(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx)
	defer func() { _ = board.Close() }()

	if _, err := board.Rank(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTreapBoard_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx)
	defer func() { _ = board.Close() }()

	const numGoroutines = 10
	const updatesPerGoroutine = 100

	var wg sync.WaitGroup
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(gid int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(gid)))
			for i := 0; i < updatesPerGoroutine; i++ {
				id := fmt.Sprintf("player-%d-%d", gid, i)
				if _, err := board.Record(ctx, id, r.Float64()*1000, "intermediate", 1); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if i%10 == 0 {
					if _, err := board.TopN(ctx, 10); err != nil {
						t.Errorf("unexpected error: %v", err)
						return
					}
				}
			}
		}(g)
	}
	wg.Wait()

	if count := board.Count(ctx); count != numGoroutines*updatesPerGoroutine {
		t.Errorf("expected %d players, got %d", numGoroutines*updatesPerGoroutine, count)
	}

	// The full ordering must stay sorted after concurrent churn.
	entries, err := board.TopN(ctx, numGoroutines*updatesPerGoroutine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < len(entries)-1; i++ {
		if entries[i].BestScore < entries[i+1].BestScore {
			t.Fatalf("entries out of order at %d: %f < %f", i, entries[i].BestScore, entries[i+1].BestScore)
		}
	}
}

func TestTreapBoard_EdgeCases(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx)
	defer func() { _ = board.Close() }()

	// Zero and negative scores are valid standings.
	if _, err := board.Record(ctx, "zero", 0.0, "beginner", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := board.Record(ctx, "negative", -10.5, "beginner", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := board.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].PlayerID != "zero" || entries[1].PlayerID != "negative" {
		t.Errorf("unexpected order: %s, %s", entries[0].PlayerID, entries[1].PlayerID)
	}

	// Equal score re-record keeps standing stable.
	improved, err := board.Record(ctx, "zero", 0.0, "beginner", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if improved {
		t.Error("expected equal score not to improve")
	}
}

func TestTreapBoard_TopNSmallerThanBoard(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx)
	defer func() { _ = board.Close() }()

	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("player%02d", i)
		if _, err := board.Record(ctx, id, float64(i), "intermediate", 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := board.TopN(ctx, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	if entries[0].PlayerID != "player49" {
		t.Errorf("expected player49 first, got %s", entries[0].PlayerID)
	}
	if entries[4].PlayerID != "player45" {
		t.Errorf("expected player45 last, got %s", entries[4].PlayerID)
	}
}

func TestTreapBoard_CloseBehavior(t *testing.T) {
	ctx := context.Background()
	board := NewTreapBoard(ctx, WithMetricsUpdateInterval(10*time.Millisecond))

	if _, err := board.Record(ctx, "player1", 42.0, "beginner", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := board.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}

	// Closing twice is safe.
	if err := board.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}

	// Reads still work after close.
	if count := board.Count(ctx); count != 1 {
		t.Errorf("expected count 1 after close, got %d", count)
	}
}
