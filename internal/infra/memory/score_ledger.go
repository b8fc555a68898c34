package memory

import (
	"context"
	"sync"
	"time"

	"trivia-proof-service/internal/domain"
)

type scoreKey struct {
	sessionID string
	playerID  string
}

// scoreRow serializes updates to one (session, player) pair.
type scoreRow struct {
	mu    sync.Mutex
	entry domain.ScoreEntry
}

// ScoreLedger is an in-memory implementation of app.ScoreLedger. Each pair has its own lock
// so different players never wait on each other.
type ScoreLedger struct {
	now func() time.Time

	mu       sync.RWMutex
	rows     map[scoreKey]*scoreRow
	sessions map[string][]*scoreRow
}

func NewScoreLedger() *ScoreLedger {
	return NewScoreLedgerWithClock(time.Now)
}

// NewScoreLedgerWithClock allows deterministic timestamps in tests.
func NewScoreLedgerWithClock(now func() time.Time) *ScoreLedger {
	return &ScoreLedger{
		now:      now,
		rows:     make(map[scoreKey]*scoreRow),
		sessions: make(map[string][]*scoreRow),
	}
}

func (l *ScoreLedger) ApplyDelta(_ context.Context, sessionID, playerID string, delta int, proofHash domain.Hash) (domain.ScoreEntry, error) {
	row := l.row(sessionID, playerID)

	row.mu.Lock()
	defer row.mu.Unlock()
	row.entry.TotalScore += delta
	row.entry.LastProofCommitment = proofHash
	row.entry.UpdatedAt = l.now()
	return row.entry, nil
}

func (l *ScoreLedger) Leaderboard(_ context.Context, sessionID string) ([]domain.ScoreEntry, error) {
	l.mu.RLock()
	rows := append([]*scoreRow(nil), l.sessions[sessionID]...)
	l.mu.RUnlock()

	entries := make([]domain.ScoreEntry, 0, len(rows))
	for _, row := range rows {
		row.mu.Lock()
		entry := row.entry
		row.mu.Unlock()
		if entry.UpdatedAt.IsZero() {
			// created by a concurrent ApplyDelta that has not written yet
			continue
		}
		entries = append(entries, entry)
	}
	domain.SortLeaderboard(entries)
	return entries, nil
}

func (l *ScoreLedger) row(sessionID, playerID string) *scoreRow {
	key := scoreKey{sessionID: sessionID, playerID: playerID}

	l.mu.RLock()
	row, ok := l.rows[key]
	l.mu.RUnlock()
	if ok {
		return row
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if row, ok := l.rows[key]; ok {
		return row
	}
	row = &scoreRow{entry: domain.ScoreEntry{SessionID: sessionID, PlayerID: playerID}}
	l.rows[key] = row
	l.sessions[sessionID] = append(l.sessions[sessionID], row)
	return row
}
