package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-proof-service/internal/domain"
)

// SubmissionLog appends audit rows to the submissions table.
type SubmissionLog struct {
	pool *pgxpool.Pool
}

func NewSubmissionLog(pool *pgxpool.Pool) *SubmissionLog {
	return &SubmissionLog{pool: pool}
}

func (l *SubmissionLog) Append(ctx context.Context, s domain.Submission) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO submissions (session_id, player_wallet, question_id, answer_choice, proof_hash, is_correct, score_delta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.SessionID, s.PlayerID, s.QuestionID, s.AnswerChoice, s.ProofCommitment.String(), s.IsCorrect, s.ScoreDelta, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}
