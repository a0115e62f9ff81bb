package transport

import (
	"errors"
	"net/http"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/media"
	"archipelago-scent/internal/middleware"
	"archipelago-scent/internal/repository"
	"archipelago-scent/internal/service"

	"go.uber.org/zap"
)

var notFoundErrors = []error{
	repository.ErrIslandNotFound,
	repository.ErrProductNotFound,
	repository.ErrQuizNotFound,
	repository.ErrOrderNotFound,
	repository.ErrFAQNotFound,
	repository.ErrUserNotFound,
}

// statusForError maps a service error to the HTTP status and the message shown to the client
func statusForError(err error) (int, string) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound, target.Error()
		}
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid authentication"
	case errors.Is(err, repository.ErrUserAlreadyExists):
		return http.StatusConflict, repository.ErrUserAlreadyExists.Error()
	case errors.Is(err, service.ErrNoMatchingAnswers):
		return http.StatusBadRequest, service.ErrNoMatchingAnswers.Error()
	case errors.Is(err, media.ErrNotConfigured):
		return http.StatusServiceUnavailable, media.ErrNotConfigured.Error()
	case errors.Is(err, database.ErrUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// respondWithServiceError logs client errors at Debug and server errors at Error
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, action string, err error) {
	status, message := statusForError(err)

	if status >= http.StatusInternalServerError {
		logger.Error(action+" failed", zap.Error(err), zap.Int("status", status))
	} else {
		logger.Debug(action+" failed", zap.Error(err), zap.Int("status", status))
	}

	middleware.RespondWithError(w, status, message)
}

// decodeRequest decodes and validates the body, answering 422 on failure
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return false
	}
	return true
}

// messageResponse is the body of delete confirmations
type messageResponse struct {
	Message string `json:"message"`
}
