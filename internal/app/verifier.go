package app

import (
	"trivia-proof-service/internal/commitment"
	"trivia-proof-service/internal/domain"
)

// VerifyAnswer decides whether answer matches the question's stored commitment.
// It performs no I/O.
func VerifyAnswer(question domain.Question, answer string) (domain.VerificationResult, error) {
	if answer == "" {
		return domain.VerificationResult{}, domain.Validation("answer must not be empty")
	}
	candidate := commitment.Commit(answer)
	delta := 0
	if commitment.Equal(candidate, question.CorrectCommitment) {
		delta = 1
	}
	return domain.VerificationResult{
		IsCorrect:           delta == 1,
		ScoreDelta:          delta,
		CandidateCommitment: candidate,
	}, nil
}
