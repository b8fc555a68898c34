package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"trivia-proof-service/internal/domain"
)

func TestScoreLedgerConcurrentDeltas(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	ledger := NewScoreLedger(newClient(mr))

	const workers = 40
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.ApplyDelta(ctx, "s1", "p1", 1, domain.Hash{9}); err != nil {
				t.Errorf("apply: %v", err)
			}
		}()
	}
	wg.Wait()

	entries, err := ledger.Leaderboard(ctx, "s1")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].TotalScore != workers {
		t.Fatalf("expected single entry with %d, got %+v", workers, entries)
	}
	if entries[0].LastProofCommitment != (domain.Hash{9}) {
		t.Fatalf("expected proof stored, got %s", entries[0].LastProofCommitment)
	}
}

func TestScoreLedgerLeaderboardTieBreak(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	ledger := NewScoreLedgerWithClock(newClient(mr), func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	})

	for _, step := range []struct {
		player string
		delta  int
	}{{"a", 3}, {"b", 5}, {"c", 5}} {
		if _, err := ledger.ApplyDelta(ctx, "s1", step.player, step.delta, domain.Hash{}); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	entries, err := ledger.Leaderboard(ctx, "s1")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	got := []string{entries[0].PlayerID, entries[1].PlayerID, entries[2].PlayerID}
	if got[0] != "b" || got[1] != "c" || got[2] != "a" {
		t.Fatalf("expected [b c a], got %v", got)
	}
	if !entries[0].UpdatedAt.Equal(base.Add(2 * time.Millisecond)) {
		t.Fatalf("expected updated_at preserved, got %v", entries[0].UpdatedAt)
	}
}

func TestScoreLedgerEmptySession(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	entries, err := NewScoreLedger(newClient(mr)).Leaderboard(context.Background(), "none")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", entries)
	}
}
