package transport

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"archipelago-scent/internal/media"
	"archipelago-scent/internal/middleware"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxUploadBytes bounds admin image uploads
const MaxUploadBytes = 10 << 20

// UploadHandler handles admin image uploads
type UploadHandler struct {
	uploader media.Uploader
	logger   *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploader media.Uploader, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		logger:   logger,
	}
}

// RegisterRoutes registers the upload route
func (h *UploadHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Post("/admin/upload", h.Upload)
}

// Upload stores the multipart "file" field and returns its public URL
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		h.logger.Debug("Upload form rejected", zap.Error(err))

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "file too large, max 10MB")
			return
		}
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		respondWithServiceError(w, h.logger, "Detect upload type", err)
		return
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		h.logger.Debug("Upload is not an image",
			zap.String("filename", header.Filename),
			zap.String("mime", detected.String()),
		)
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "file must be an image")
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondWithServiceError(w, h.logger, "Rewind upload", err)
		return
	}

	result, err := h.uploader.Upload(r.Context(), file)
	if err != nil {
		respondWithServiceError(w, h.logger, "Image upload", err)
		return
	}

	h.logger.Info("Image uploaded",
		zap.String("public_id", result.PublicID),
		zap.String("mime", detected.String()),
		zap.Int64("size", header.Size),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, result)
}
