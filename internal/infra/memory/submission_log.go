package memory

import (
	"context"
	"sync"

	"trivia-proof-service/internal/domain"
)

// SubmissionLog keeps submissions in append order.
type SubmissionLog struct {
	mu          sync.RWMutex
	submissions []domain.Submission
}

func NewSubmissionLog() *SubmissionLog {
	return &SubmissionLog{}
}

func (l *SubmissionLog) Append(_ context.Context, submission domain.Submission) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submissions = append(l.submissions, submission)
	return nil
}

// All returns a copy of every recorded submission.
func (l *SubmissionLog) All() []domain.Submission {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Submission(nil), l.submissions...)
}
