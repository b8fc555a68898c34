package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-proof-service/internal/domain"
)

// QuestionStore persists questions in Postgres. Choices live in a JSONB column.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

// AppendQuestions registers the session and inserts the batch in one transaction. The session
// row lock serializes concurrent batches so indexes never collide.
func (s *QuestionStore) AppendQuestions(ctx context.Context, sessionID string, questions []domain.Question) ([]domain.Question, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var offset int
	err = tx.QueryRow(ctx, `
		INSERT INTO quiz_sessions (id, question_count) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET question_count = quiz_sessions.question_count + EXCLUDED.question_count
		RETURNING question_count - $2`, sessionID, len(questions)).Scan(&offset)
	if err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}

	stored := make([]domain.Question, len(questions))
	batch := &pgx.Batch{}
	for i, q := range questions {
		q.SessionID = sessionID
		q.Index = offset + i
		choices, err := json.Marshal(q.Choices)
		if err != nil {
			return nil, fmt.Errorf("marshal choices: %w", err)
		}
		batch.Queue(`
			INSERT INTO questions (id, session_id, question, choices, correct_hash, index_in_session)
			VALUES ($1, $2, $3, $4::jsonb, $5, $6)`,
			q.ID, q.SessionID, q.Prompt, string(choices), q.CorrectCommitment.String(), q.Index)
		stored[i] = q
	}
	if batch.Len() > 0 {
		results := tx.SendBatch(ctx, batch)
		for range questions {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return nil, fmt.Errorf("insert question: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return nil, fmt.Errorf("insert questions: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

func (s *QuestionStore) ListQuestions(ctx context.Context, sessionID string) ([]domain.Question, error) {
	var ingested bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quiz_sessions WHERE id=$1)`, sessionID).Scan(&ingested); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ingested {
		return nil, domain.ErrSessionNotIngested
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, question, choices, correct_hash, index_in_session
		FROM questions WHERE session_id=$1 ORDER BY index_in_session ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *QuestionStore) GetQuestion(ctx context.Context, sessionID, questionID string) (domain.Question, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, question, choices, correct_hash, index_in_session
		FROM questions WHERE id=$1 AND session_id=$2`, questionID, sessionID)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q           domain.Question
		rawChoices  interface{}
		correctHash string
	)
	if err := row.Scan(&q.ID, &q.SessionID, &q.Prompt, &rawChoices, &correctHash, &q.Index); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return q, err
		}
		return q, fmt.Errorf("scan question: %w", err)
	}
	q.Choices = domain.DecodeChoices(rawChoices)
	hash, err := domain.ParseHash(correctHash)
	if err != nil {
		return q, fmt.Errorf("question %s: %w", q.ID, err)
	}
	q.CorrectCommitment = hash
	return q, nil
}
