package domain

import "time"

// Question is a stored trivia question. CorrectCommitment stays server side; use Public
// for anything handed to a session participant.
type Question struct {
	ID                string   `json:"id"`
	SessionID         string   `json:"sessionId"`
	Prompt            string   `json:"prompt"`
	Choices           []string `json:"choices"`
	CorrectCommitment Hash     `json:"correctCommitment"`
	Index             int      `json:"indexInSession"`
}

// PublicQuestion is the participant-facing view of a question.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Index   int      `json:"index"`
}

// Public strips the commitment.
func (q Question) Public() PublicQuestion {
	choices := make([]string, len(q.Choices))
	copy(choices, q.Choices)
	return PublicQuestion{ID: q.ID, Prompt: q.Prompt, Choices: choices, Index: q.Index}
}

// Submission is the append-only audit row written for every verified answer.
type Submission struct {
	SessionID       string
	PlayerID        string
	QuestionID      string
	AnswerChoice    string
	ProofCommitment Hash
	IsCorrect       bool
	ScoreDelta      int
	CreatedAt       time.Time
}

// ScoreEntry is the aggregate score of one player within one session.
type ScoreEntry struct {
	SessionID           string    `json:"sessionId"`
	PlayerID            string    `json:"player"`
	TotalScore          int       `json:"totalScore"`
	LastProofCommitment Hash      `json:"proofHash"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// VerificationResult is the outcome of comparing a submitted answer against a question.
type VerificationResult struct {
	IsCorrect           bool
	ScoreDelta          int
	CandidateCommitment Hash
}

// Proof binds a verification outcome to its identifying fields. The JSON shape matches the
// tuple (bytes32,address,bytes32,uint256,bytes32) consumed on chain.
type Proof struct {
	SessionID  Bytes32 `json:"sessionId"`
	Player     string  `json:"player"`
	QuestionID Bytes32 `json:"questionId"`
	ScoreDelta int     `json:"scoreDelta"`
	ProofHash  Hash    `json:"proofHash"`
	// Truncated is set when an identifier did not fit in 32 bytes.
	Truncated bool `json:"-"`
}

// VerifyOutcome is what a successful Verify call reports back.
type VerifyOutcome struct {
	Result VerificationResult
	Proof  Proof
	Entry  ScoreEntry
}

// IngestOptions selects which upstream questions to pull.
type IngestOptions struct {
	Count      int
	Category   int
	Difficulty string
	Type       string
}

// RawQuestion is an upstream question after entity decoding, before commitment.
type RawQuestion struct {
	Category         string
	Type             string
	Difficulty       string
	Prompt           string
	CorrectAnswer    string
	IncorrectAnswers []string
}

// Leaderboard is an ordered snapshot of a session's score entries.
type Leaderboard struct {
	SessionID string       `json:"sessionId"`
	Entries   []ScoreEntry `json:"entries"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
