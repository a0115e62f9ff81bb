package transport

import (
	"net/http"

	"archipelago-scent/internal/middleware"
	"archipelago-scent/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse represents the login response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthHandler handles HTTP requests for admin accounts
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware, rateLimit func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.With(rateLimit).Post("/login", h.Login)

		// Protected routes
		r.With(authMiddleware).Get("/me", h.Me)
	})
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, "Registration", err)
		return
	}

	h.logger.Info("User registered successfully", zap.String("user_id", user.ID), zap.String("username", user.Username))
	middleware.RespondWithJSON(w, http.StatusCreated, user)
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	accessToken, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, "Login", err)
		return
	}

	h.logger.Info("User logged in successfully", zap.String("username", req.Username))
	middleware.RespondWithJSON(w, http.StatusOK, TokenResponse{
		AccessToken: accessToken,
		TokenType:   service.TokenType,
	})
}

// Me returns the user resolved by the auth middleware
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		h.logger.Error("User not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid authentication")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}
