package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-proof-service/internal/domain"
)

// ScoreLedger applies score deltas with a single upsert, so the increment happens under
// the row lock and concurrent submissions cannot lose updates.
type ScoreLedger struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewScoreLedger(pool *pgxpool.Pool) *ScoreLedger {
	return &ScoreLedger{pool: pool, now: time.Now}
}

func (l *ScoreLedger) ApplyDelta(ctx context.Context, sessionID, playerID string, delta int, proofHash domain.Hash) (domain.ScoreEntry, error) {
	entry := domain.ScoreEntry{
		SessionID:           sessionID,
		PlayerID:            playerID,
		LastProofCommitment: proofHash,
	}
	err := l.pool.QueryRow(ctx, `
		INSERT INTO scores (session_id, player_wallet, total_score, proof_hash, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, player_wallet) DO UPDATE
		SET total_score = scores.total_score + EXCLUDED.total_score,
		    proof_hash  = EXCLUDED.proof_hash,
		    updated_at  = EXCLUDED.updated_at
		RETURNING total_score, updated_at`,
		sessionID, playerID, delta, proofHash.String(), l.now().UTC()).Scan(&entry.TotalScore, &entry.UpdatedAt)
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("upsert score: %w", err)
	}
	return entry, nil
}

func (l *ScoreLedger) Leaderboard(ctx context.Context, sessionID string) ([]domain.ScoreEntry, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT player_wallet, total_score, proof_hash, updated_at
		FROM scores WHERE session_id=$1
		ORDER BY total_score DESC, updated_at ASC, player_wallet ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []domain.ScoreEntry{}
	for rows.Next() {
		var (
			entry     = domain.ScoreEntry{SessionID: sessionID}
			proofHash string
		)
		if err := rows.Scan(&entry.PlayerID, &entry.TotalScore, &proofHash, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		if entry.LastProofCommitment, err = domain.ParseHash(proofHash); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return entries, nil
}
