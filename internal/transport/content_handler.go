package transport

import (
	"net/http"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/middleware"
	"archipelago-scent/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ThemeUpdateRequest represents a partial theme update; omitted or null fields are kept
type ThemeUpdateRequest struct {
	PrimaryColor   *string  `json:"primary_color"`
	SecondaryColor *string  `json:"secondary_color"`
	AccentColor    *string  `json:"accent_color"`
	HeroImages     []string `json:"hero_images"`
}

// FAQRequest represents the faq creation payload
type FAQRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Order    int    `json:"order"`
}

// FAQUpdateRequest represents a partial faq update
type FAQUpdateRequest struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Order    *int    `json:"order"`
}

// ContentHandler handles HTTP requests for theme settings and faq content
type ContentHandler struct {
	contentService service.ContentService
	logger         *zap.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contentService service.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		logger:         logger,
	}
}

// RegisterRoutes registers theme and faq routes
func (h *ContentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/theme", h.GetTheme)
	r.Get("/faq", h.ListFAQ)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Put("/admin/theme", h.UpdateTheme)
		r.Post("/admin/faq", h.CreateFAQ)
		r.Put("/admin/faq/{id}", h.UpdateFAQ)
		r.Delete("/admin/faq/{id}", h.DeleteFAQ)
	})
}

func (h *ContentHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.contentService.GetTheme(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "Get theme", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, theme)
}

func (h *ContentHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeUpdateRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	theme, err := h.contentService.UpdateTheme(r.Context(), domain.ThemePatch{
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		AccentColor:    req.AccentColor,
		HeroImages:     req.HeroImages,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Update theme", err)
		return
	}

	h.logger.Info("Theme updated")
	middleware.RespondWithJSON(w, http.StatusOK, theme)
}

func (h *ContentHandler) ListFAQ(w http.ResponseWriter, r *http.Request) {
	items, err := h.contentService.ListFAQ(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "List faq", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	var req FAQRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	item, err := h.contentService.CreateFAQ(r.Context(), req.Question, req.Answer, req.Order)
	if err != nil {
		respondWithServiceError(w, h.logger, "Create faq", err)
		return
	}

	h.logger.Info("FAQ item created", zap.String("faq_id", item.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

func (h *ContentHandler) UpdateFAQ(w http.ResponseWriter, r *http.Request) {
	var req FAQUpdateRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	item, err := h.contentService.UpdateFAQ(r.Context(), chi.URLParam(r, "id"), domain.FAQPatch{
		Question: req.Question,
		Answer:   req.Answer,
		Order:    req.Order,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Update faq", err)
		return
	}

	h.logger.Info("FAQ item updated", zap.String("faq_id", item.ID))
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

func (h *ContentHandler) DeleteFAQ(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.contentService.DeleteFAQ(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, "Delete faq", err)
		return
	}

	h.logger.Info("FAQ item deleted", zap.String("faq_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, messageResponse{Message: "FAQ deleted"})
}
