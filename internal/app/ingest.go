package app

import (
	"html"
	"math/rand/v2"

	"github.com/google/uuid"

	"trivia-proof-service/internal/commitment"
	"trivia-proof-service/internal/domain"
)

const (
	defaultQuestionCount = 10
	maxQuestionCount     = 50
)

// ShuffleFunc permutes n elements through swap. rand.Shuffle (Fisher-Yates) is the default.
type ShuffleFunc func(n int, swap func(i, j int))

// NormalizeIngestOptions applies defaults and rejects values the trivia source cannot serve.
func NormalizeIngestOptions(opts domain.IngestOptions) (domain.IngestOptions, error) {
	switch {
	case opts.Count < 0:
		return opts, domain.Validation("count must not be negative")
	case opts.Count == 0:
		opts.Count = defaultQuestionCount
	case opts.Count > maxQuestionCount:
		return opts, domain.Validation("count must be at most 50")
	}
	if opts.Category < 0 {
		return opts, domain.Validation("category must not be negative")
	}
	switch opts.Difficulty {
	case "", "any":
		opts.Difficulty = ""
	case "easy", "medium", "hard":
	default:
		return opts, domain.Validation("difficulty must be one of easy, medium, hard")
	}
	switch opts.Type {
	case "", "any":
		opts.Type = ""
	case "boolean", "multiple":
	default:
		return opts, domain.Validation("type must be one of boolean, multiple")
	}
	return opts, nil
}

// buildQuestions decodes, shuffles and commits raw questions. The plaintext correct answer
// does not survive past this function.
func buildQuestions(sessionID string, raw []domain.RawQuestion, shuffle ShuffleFunc) []domain.Question {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	questions := make([]domain.Question, 0, len(raw))
	for i, r := range raw {
		correct := html.UnescapeString(r.CorrectAnswer)
		choices := make([]string, 0, len(r.IncorrectAnswers)+1)
		choices = append(choices, correct)
		for _, wrong := range r.IncorrectAnswers {
			choices = append(choices, html.UnescapeString(wrong))
		}
		shuffle(len(choices), func(a, b int) {
			choices[a], choices[b] = choices[b], choices[a]
		})

		questions = append(questions, domain.Question{
			ID:                uuid.NewString(),
			SessionID:         sessionID,
			Prompt:            html.UnescapeString(r.Prompt),
			Choices:           choices,
			CorrectCommitment: commitment.Commit(correct),
			Index:             i,
		})
	}
	return questions
}
