package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"trivia-proof-service/internal/domain"
	"trivia-proof-service/internal/metrics"
	"trivia-proof-service/internal/proof"
)

// QuestionStore persists ingested questions (in-memory, Postgres, Redis-cached).
type QuestionStore interface {
	// AppendQuestions stores a batch atomically, assigning index_in_session after any
	// questions already stored for the session, and returns the stored rows.
	AppendQuestions(ctx context.Context, sessionID string, questions []domain.Question) ([]domain.Question, error)
	ListQuestions(ctx context.Context, sessionID string) ([]domain.Question, error)
	GetQuestion(ctx context.Context, sessionID, questionID string) (domain.Question, error)
}

// SubmissionLog is the append-only audit trail of verified answers.
type SubmissionLog interface {
	Append(ctx context.Context, submission domain.Submission) error
}

// ScoreLedger keeps one aggregate row per (session, player). ApplyDelta must not lose
// updates under concurrent calls for the same pair.
type ScoreLedger interface {
	ApplyDelta(ctx context.Context, sessionID, playerID string, delta int, proofHash domain.Hash) (domain.ScoreEntry, error)
	Leaderboard(ctx context.Context, sessionID string) ([]domain.ScoreEntry, error)
}

// SubmissionGuard enforces one scored submission per (session, player, question).
type SubmissionGuard interface {
	Claim(ctx context.Context, sessionID, playerID, questionID string) (bool, error)
	Release(ctx context.Context, sessionID, playerID, questionID string) error
}

// TriviaSource fetches raw questions from the third-party content provider.
type TriviaSource interface {
	FetchQuestions(ctx context.Context, opts domain.IngestOptions) ([]domain.RawQuestion, error)
}

// VerifyRequest carries one answer attempt.
type VerifyRequest struct {
	SessionID  string
	QuestionID string
	Answer     string
	Player     string
}

// QuizService contains the ingestion, verification and leaderboard use cases.
type QuizService struct {
	questions   QuestionStore
	submissions SubmissionLog
	ledger      ScoreLedger
	source      TriviaSource

	guard   SubmissionGuard
	hub     *LeaderboardHub
	log     *zap.Logger
	shuffle ShuffleFunc
	now     func() time.Time
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithGuard enables the reject-duplicates policy.
func WithGuard(guard SubmissionGuard) Option {
	return func(s *QuizService) { s.guard = guard }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *QuizService) { s.log = log }
}

func WithHub(hub *LeaderboardHub) Option {
	return func(s *QuizService) { s.hub = hub }
}

// WithShuffle is test-only for deterministic choice order.
func WithShuffle(shuffle ShuffleFunc) Option {
	return func(s *QuizService) { s.shuffle = shuffle }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(questions QuestionStore, submissions SubmissionLog, ledger ScoreLedger, source TriviaSource, opts ...Option) *QuizService {
	s := &QuizService{
		questions:   questions,
		submissions: submissions,
		ledger:      ledger,
		source:      source,
		hub:         NewLeaderboardHub(),
		log:         zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub exposes the leaderboard fan-out so transports can subscribe.
func (s *QuizService) Hub() *LeaderboardHub {
	return s.hub
}

// Ingest pulls questions from the trivia source and stores them with their commitments.
func (s *QuizService) Ingest(ctx context.Context, sessionID string, opts domain.IngestOptions) (int, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, domain.Validation("sessionId is required")
	}
	opts, err := NormalizeIngestOptions(opts)
	if err != nil {
		return 0, err
	}

	raw, err := s.source.FetchQuestions(ctx, opts)
	if err != nil {
		if !errors.Is(err, domain.ErrUpstream) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
		s.log.Warn("trivia fetch failed", zap.String("session", sessionID), zap.Error(err))
		return 0, err
	}

	stored, err := s.questions.AppendQuestions(ctx, sessionID, buildQuestions(sessionID, raw, s.shuffle))
	if err != nil {
		s.log.Error("store questions failed", zap.String("session", sessionID), zap.Error(err))
		return 0, fmt.Errorf("%w: store questions: %w", domain.ErrPersistence, err)
	}

	metrics.IngestedQuestions.Add(float64(len(stored)))
	s.log.Info("questions ingested", zap.String("session", sessionID), zap.Int("count", len(stored)))
	return len(stored), nil
}

// ListQuestions returns the participant view of a session's questions in ingestion order.
func (s *QuizService) ListQuestions(ctx context.Context, sessionID string) ([]domain.PublicQuestion, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.Validation("sessionId is required")
	}
	questions, err := s.questions.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, storeError("list questions", err)
	}
	out := make([]domain.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.Public())
	}
	return out, nil
}

// Verify scores one answer, records it and returns the proof for on-chain submission.
func (s *QuizService) Verify(ctx context.Context, req VerifyRequest) (domain.VerifyOutcome, error) {
	if req.SessionID == "" || req.QuestionID == "" || req.Answer == "" || req.Player == "" {
		return domain.VerifyOutcome{}, domain.Validation("Missing required fields: sessionId, questionId, answer, player")
	}
	player := CanonicalPlayer(req.Player)

	question, err := s.questions.GetQuestion(ctx, req.SessionID, req.QuestionID)
	if err != nil {
		return domain.VerifyOutcome{}, storeError("load question", err)
	}

	claimed := false
	if s.guard != nil {
		ok, err := s.guard.Claim(ctx, req.SessionID, player, req.QuestionID)
		if err != nil {
			return domain.VerifyOutcome{}, fmt.Errorf("%w: claim submission: %w", domain.ErrPersistence, err)
		}
		if !ok {
			return domain.VerifyOutcome{}, domain.ErrDuplicateSubmission
		}
		claimed = true
	}

	result, err := VerifyAnswer(question, req.Answer)
	if err != nil {
		s.release(ctx, claimed, req.SessionID, player, req.QuestionID)
		return domain.VerifyOutcome{}, err
	}

	p := proof.Build(req.SessionID, req.QuestionID, player, result.ScoreDelta, result.CandidateCommitment)
	if p.Truncated {
		metrics.IdentifierTruncations.Inc()
		s.log.Warn("identifier truncated to 32 bytes in proof",
			zap.String("session", req.SessionID),
			zap.String("question", req.QuestionID))
	}

	err = s.submissions.Append(ctx, domain.Submission{
		SessionID:       req.SessionID,
		PlayerID:        player,
		QuestionID:      req.QuestionID,
		AnswerChoice:    req.Answer,
		ProofCommitment: p.ProofHash,
		IsCorrect:       result.IsCorrect,
		ScoreDelta:      result.ScoreDelta,
		CreatedAt:       s.now(),
	})
	if err != nil {
		// The score is still applied; the audit row is missing and must be reconciled.
		metrics.SubmissionPersistFailures.Inc()
		s.log.Error("submission not persisted",
			zap.String("session", req.SessionID),
			zap.String("player", player),
			zap.String("question", req.QuestionID),
			zap.String("proof", p.ProofHash.String()),
			zap.Error(err))
	}

	entry, err := s.ledger.ApplyDelta(ctx, req.SessionID, player, result.ScoreDelta, p.ProofHash)
	if err != nil {
		s.release(ctx, claimed, req.SessionID, player, req.QuestionID)
		s.log.Error("score not applied",
			zap.String("session", req.SessionID),
			zap.String("player", player),
			zap.Error(err))
		return domain.VerifyOutcome{}, fmt.Errorf("%w: apply score: %w", domain.ErrPersistence, err)
	}

	metrics.ObserveSubmission(result.IsCorrect)
	s.log.Info("answer verified",
		zap.String("session", req.SessionID),
		zap.String("player", player),
		zap.Bool("correct", result.IsCorrect),
		zap.Int("total", entry.TotalScore))

	s.publish(ctx, req.SessionID)
	return domain.VerifyOutcome{Result: result, Proof: p, Entry: entry}, nil
}

// Leaderboard returns the session's score entries, highest first.
func (s *QuizService) Leaderboard(ctx context.Context, sessionID string) (domain.Leaderboard, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Leaderboard{}, domain.Validation("sessionId is required")
	}
	entries, err := s.ledger.Leaderboard(ctx, sessionID)
	if err != nil {
		return domain.Leaderboard{}, storeError("read leaderboard", err)
	}
	domain.SortLeaderboard(entries)
	return domain.Leaderboard{SessionID: sessionID, Entries: entries, UpdatedAt: s.now()}, nil
}

// Subscribe returns a channel that receives leaderboard updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, sessionID string) (<-chan domain.Leaderboard, func(), error) {
	lb, err := s.Leaderboard(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(sessionID, lb)
	return ch, cancel, nil
}

func (s *QuizService) publish(ctx context.Context, sessionID string) {
	if !s.hub.HasSubscribers(sessionID) {
		return
	}
	lb, err := s.Leaderboard(ctx, sessionID)
	if err != nil {
		s.log.Warn("leaderboard broadcast skipped", zap.String("session", sessionID), zap.Error(err))
		return
	}
	s.hub.Publish(lb)
}

func (s *QuizService) release(ctx context.Context, claimed bool, sessionID, player, questionID string) {
	if !claimed {
		return
	}
	if err := s.guard.Release(ctx, sessionID, player, questionID); err != nil {
		s.log.Warn("release submission claim failed",
			zap.String("session", sessionID),
			zap.String("player", player),
			zap.String("question", questionID),
			zap.Error(err))
	}
}

// CanonicalPlayer lower-cases wallet addresses so one wallet maps to one score row.
func CanonicalPlayer(player string) string {
	return strings.ToLower(strings.TrimSpace(player))
}

// storeError keeps typed store errors and tags anything else as a persistence failure.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
