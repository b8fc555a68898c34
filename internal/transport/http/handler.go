package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trivia-proof-service/internal/app"
	"trivia-proof-service/internal/domain"
)

// Handler serves the ingest, verify and read endpoints.
type Handler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(service *app.QuizService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/functions/v1/quiz-fetch", h.Ingest)
	r.POST("/functions/v1/quiz-verify", h.Verify)
	r.GET("/sessions/:sessionId/questions", h.ListQuestions)
	r.GET("/sessions/:sessionId/leaderboard", h.Leaderboard)
	r.GET("/ws/leaderboard", h.ServeLeaderboardWS)
}

type ingestRequest struct {
	SessionID  string  `json:"sessionId" binding:"required"`
	Count      flexInt `json:"count"`
	Category   flexInt `json:"category"`
	Difficulty string  `json:"difficulty" binding:"omitempty,oneof=easy medium hard any"`
	Type       string  `json:"type" binding:"omitempty,oneof=boolean multiple any"`
}

type ingestResponse struct {
	Success        bool   `json:"success"`
	QuestionsCount int    `json:"questionsCount"`
	SessionID      string `json:"sessionId"`
}

// Ingest pulls questions for a session from the trivia source.
func (h *Handler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	count, err := h.service.Ingest(c.Request.Context(), req.SessionID, domain.IngestOptions{
		Count:      int(req.Count),
		Category:   int(req.Category),
		Difficulty: req.Difficulty,
		Type:       req.Type,
	})
	if err != nil {
		h.logFailure(c, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingestResponse{Success: true, QuestionsCount: count, SessionID: req.SessionID})
}

type verifyRequest struct {
	SessionID  string `json:"sessionId" binding:"required"`
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
	Player     string `json:"player" binding:"required,eth_addr"`
}

type verifyResponse struct {
	Success    bool         `json:"success"`
	IsCorrect  bool         `json:"isCorrect"`
	ScoreDelta int          `json:"scoreDelta"`
	ProofData  domain.Proof `json:"proofData"`
	ProofHash  domain.Hash  `json:"proofHash"`
}

// Verify scores one answer and returns the proof for on-chain submission.
func (h *Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	outcome, err := h.service.Verify(c.Request.Context(), app.VerifyRequest{
		SessionID:  req.SessionID,
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
		Player:     req.Player,
	})
	if err != nil {
		h.logFailure(c, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, verifyResponse{
		Success:    true,
		IsCorrect:  outcome.Result.IsCorrect,
		ScoreDelta: outcome.Result.ScoreDelta,
		ProofData:  outcome.Proof,
		ProofHash:  outcome.Proof.ProofHash,
	})
}

type questionsResponse struct {
	Success   bool                    `json:"success"`
	SessionID string                  `json:"sessionId"`
	Questions []domain.PublicQuestion `json:"questions"`
}

func (h *Handler) ListQuestions(c *gin.Context) {
	sessionID := c.Param("sessionId")
	questions, err := h.service.ListQuestions(c.Request.Context(), sessionID)
	if err != nil {
		h.logFailure(c, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, questionsResponse{Success: true, SessionID: sessionID, Questions: questions})
}

type leaderboardResponse struct {
	Success bool `json:"success"`
	domain.Leaderboard
}

func (h *Handler) Leaderboard(c *gin.Context) {
	lb, err := h.service.Leaderboard(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.logFailure(c, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, leaderboardResponse{Success: true, Leaderboard: lb})
}

func (h *Handler) logFailure(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("route", c.FullPath()), zap.Int("status", status), zap.Error(err))
		return
	}
	h.log.Debug("request rejected", zap.String("route", c.FullPath()), zap.Int("status", status), zap.Error(err))
}
