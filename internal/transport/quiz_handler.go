package transport

import (
	"net/http"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/middleware"
	"archipelago-scent/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// QuizRequest replaces the whole quiz
type QuizRequest struct {
	Questions []domain.QuizQuestion `json:"questions" validate:"required,dive"`
}

// QuizSubmission carries the selected option texts
type QuizSubmission struct {
	Answers []string `json:"answers" validate:"required"`
}

// QuizHandler handles HTTP requests for the recommendation quiz
type QuizHandler struct {
	quizService service.QuizService
	logger      *zap.Logger
}

// NewQuizHandler creates a new QuizHandler
func NewQuizHandler(quizService service.QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		logger:      logger,
	}
}

// RegisterRoutes registers all quiz routes
func (h *QuizHandler) RegisterRoutes(r chi.Router, authMiddleware, rateLimit func(http.Handler) http.Handler) {
	r.Get("/quiz", h.GetQuiz)
	r.With(rateLimit).Post("/quiz/submit", h.Submit)
	r.With(authMiddleware).Put("/admin/quiz", h.ReplaceQuiz)
}

// GetQuiz returns the current quiz
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizService.Get(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "Get quiz", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, quiz)
}

// Submit scores the answers and returns the recommended island with its products
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req QuizSubmission
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	result, err := h.quizService.Submit(r.Context(), req.Answers)
	if err != nil {
		respondWithServiceError(w, h.logger, "Quiz submission", err)
		return
	}

	h.logger.Debug("Quiz scored",
		zap.String("island_id", result.Island.ID),
		zap.Int("answers", len(req.Answers)),
		zap.Int("products", len(result.Products)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// ReplaceQuiz overwrites the stored quiz
func (h *QuizHandler) ReplaceQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	quiz, err := h.quizService.Replace(r.Context(), req.Questions)
	if err != nil {
		respondWithServiceError(w, h.logger, "Replace quiz", err)
		return
	}

	h.logger.Info("Quiz replaced", zap.Int("questions", len(quiz.Questions)))
	middleware.RespondWithJSON(w, http.StatusOK, quiz)
}
