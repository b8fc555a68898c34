package memory

import (
	"context"
	"sync"

	"trivia-proof-service/internal/domain"
)

// QuestionStore is an in-memory implementation of app.QuestionStore.
type QuestionStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Question
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{sessions: make(map[string][]domain.Question)}
}

func (s *QuestionStore) AppendQuestions(_ context.Context, sessionID string, questions []domain.Question) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.sessions[sessionID]
	stored := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.SessionID = sessionID
		q.Index = len(existing) + i
		q.Choices = append([]string(nil), q.Choices...)
		stored[i] = q
	}
	// A zero-question batch still marks the session as ingested.
	s.sessions[sessionID] = append(existing, stored...)
	return cloneQuestions(stored), nil
}

func (s *QuestionStore) ListQuestions(_ context.Context, sessionID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotIngested
	}
	return cloneQuestions(questions), nil
}

func (s *QuestionStore) GetQuestion(_ context.Context, sessionID, questionID string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.sessions[sessionID] {
		if q.ID == questionID {
			q.Choices = append([]string(nil), q.Choices...)
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Choices = append([]string(nil), q.Choices...)
		out[i] = q
	}
	return out
}
