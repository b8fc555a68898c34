package memory

import (
	"context"
	"sync"
)

type claimKey struct {
	sessionID  string
	playerID   string
	questionID string
}

// SubmissionGuard records which (session, player, question) triples were already scored.
type SubmissionGuard struct {
	mu      sync.Mutex
	claimed map[claimKey]struct{}
}

func NewSubmissionGuard() *SubmissionGuard {
	return &SubmissionGuard{claimed: make(map[claimKey]struct{})}
}

func (g *SubmissionGuard) Claim(_ context.Context, sessionID, playerID, questionID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := claimKey{sessionID, playerID, questionID}
	if _, ok := g.claimed[key]; ok {
		return false, nil
	}
	g.claimed[key] = struct{}{}
	return true, nil
}

func (g *SubmissionGuard) Release(_ context.Context, sessionID, playerID, questionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, claimKey{sessionID, playerID, questionID})
	return nil
}
