package app

import (
	"testing"

	"trivia-proof-service/internal/domain"
)

func TestLeaderboardHubDropsStaleSnapshots(t *testing.T) {
	hub := NewLeaderboardHub()
	ch, cancel := hub.Subscribe("s1", domain.Leaderboard{SessionID: "s1"})
	defer cancel()

	for i := 1; i <= 20; i++ {
		hub.Publish(domain.Leaderboard{SessionID: "s1", Entries: []domain.ScoreEntry{{TotalScore: i}}})
	}

	var last domain.Leaderboard
	for len(ch) > 0 {
		last = <-ch
	}
	if len(last.Entries) != 1 || last.Entries[0].TotalScore != 20 {
		t.Fatalf("expected newest snapshot retained, got %+v", last)
	}
}

func TestLeaderboardHubScopesBySession(t *testing.T) {
	hub := NewLeaderboardHub()
	ch, cancel := hub.Subscribe("s1", domain.Leaderboard{SessionID: "s1"})
	<-ch

	hub.Publish(domain.Leaderboard{SessionID: "s2"})
	if len(ch) != 0 {
		t.Fatalf("expected no delivery across sessions")
	}
	if !hub.HasSubscribers("s1") || hub.HasSubscribers("s2") {
		t.Fatalf("unexpected subscriber bookkeeping")
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after cancel")
	}
	if hub.HasSubscribers("s1") {
		t.Fatalf("expected subscribers cleared")
	}
}
