package transport

import (
	"net/http"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/middleware"
	"archipelago-scent/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IslandRequest represents the island creation payload
type IslandRequest struct {
	Name       string            `json:"name" validate:"required"`
	Slug       string            `json:"slug"`
	Story      string            `json:"story" validate:"required"`
	Mood       string            `json:"mood" validate:"required"`
	AromaNotes domain.AromaNotes `json:"aroma_notes"`
	ImageURL   string            `json:"image_url" validate:"required"`
}

// IslandUpdateRequest represents a partial island update; omitted or null fields are kept
type IslandUpdateRequest struct {
	Name       *string            `json:"name"`
	Slug       *string            `json:"slug"`
	Story      *string            `json:"story"`
	Mood       *string            `json:"mood"`
	AromaNotes *domain.AromaNotes `json:"aroma_notes"`
	ImageURL   *string            `json:"image_url"`
}

// ProductRequest represents the product creation payload.
// Price and stock are pointers so an explicit zero is told apart from a missing field.
type ProductRequest struct {
	Name            string            `json:"name" validate:"required"`
	IslandID        string            `json:"island_id" validate:"required"`
	IslandName      string            `json:"island_name"`
	Price           *float64          `json:"price" validate:"required,gte=0"`
	Stock           *int              `json:"stock" validate:"required,gte=0"`
	Size            string            `json:"size"`
	Description     string            `json:"description" validate:"required"`
	AromaNotes      domain.AromaNotes `json:"aroma_notes"`
	OlfactiveFamily string            `json:"olfactive_family" validate:"required"`
	Mood            string            `json:"mood" validate:"required"`
	ImageURL        string            `json:"image_url" validate:"required"`
}

// ProductUpdateRequest represents a partial product update; omitted or null fields are kept
type ProductUpdateRequest struct {
	Name            *string            `json:"name"`
	Price           *float64           `json:"price" validate:"omitempty,gte=0"`
	Stock           *int               `json:"stock" validate:"omitempty,gte=0"`
	Size            *string            `json:"size"`
	Description     *string            `json:"description"`
	AromaNotes      *domain.AromaNotes `json:"aroma_notes"`
	OlfactiveFamily *string            `json:"olfactive_family"`
	Mood            *string            `json:"mood"`
	ImageURL        *string            `json:"image_url"`
}

// CatalogHandler handles HTTP requests for islands and products
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	// Public routes
	r.Get("/islands", h.ListIslands)
	r.Get("/islands/{id}", h.GetIsland)
	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/admin/islands", h.ListIslands)
		r.Post("/admin/islands", h.CreateIsland)
		r.Put("/admin/islands/{id}", h.UpdateIsland)
		r.Post("/admin/products", h.CreateProduct)
		r.Put("/admin/products/{id}", h.UpdateProduct)
		r.Delete("/admin/products/{id}", h.DeleteProduct)
	})
}

// ListIslands handles listing islands
func (h *CatalogHandler) ListIslands(w http.ResponseWriter, r *http.Request) {
	islands, err := h.catalogService.ListIslands(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "List islands", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, islands)
}

// GetIsland handles getting a single island
func (h *CatalogHandler) GetIsland(w http.ResponseWriter, r *http.Request) {
	island, err := h.catalogService.GetIsland(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, "Get island", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, island)
}

// CreateIsland handles island creation
func (h *CatalogHandler) CreateIsland(w http.ResponseWriter, r *http.Request) {
	var req IslandRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	island, err := h.catalogService.CreateIsland(r.Context(), &domain.Island{
		Name:       req.Name,
		Slug:       req.Slug,
		Story:      req.Story,
		Mood:       req.Mood,
		AromaNotes: req.AromaNotes,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Create island", err)
		return
	}

	h.logger.Info("Island created", zap.String("island_id", island.ID), zap.String("slug", island.Slug))
	middleware.RespondWithJSON(w, http.StatusCreated, island)
}

// UpdateIsland handles partial island updates
func (h *CatalogHandler) UpdateIsland(w http.ResponseWriter, r *http.Request) {
	var req IslandUpdateRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	island, err := h.catalogService.UpdateIsland(r.Context(), chi.URLParam(r, "id"), domain.IslandPatch{
		Name:       req.Name,
		Slug:       req.Slug,
		Story:      req.Story,
		Mood:       req.Mood,
		AromaNotes: req.AromaNotes,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Update island", err)
		return
	}

	h.logger.Info("Island updated", zap.String("island_id", island.ID))
	middleware.RespondWithJSON(w, http.StatusOK, island)
}

// ListProducts handles listing products with optional equality filters
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ProductFilter{
		IslandID:        query.Get("island_id"),
		Mood:            query.Get("mood"),
		OlfactiveFamily: query.Get("olfactive_family"),
	}

	products, err := h.catalogService.ListProducts(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, "List products", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct handles getting a single product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogService.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, "Get product", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles product creation
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), &domain.Product{
		Name:            req.Name,
		IslandID:        req.IslandID,
		IslandName:      req.IslandName,
		Price:           *req.Price,
		Stock:           *req.Stock,
		Size:            req.Size,
		Description:     req.Description,
		AromaNotes:      req.AromaNotes,
		OlfactiveFamily: req.OlfactiveFamily,
		Mood:            req.Mood,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Create product", err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("island_id", product.IslandID))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles partial product updates
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductUpdateRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), chi.URLParam(r, "id"), domain.ProductPatch{
		Name:            req.Name,
		Price:           req.Price,
		Stock:           req.Stock,
		Size:            req.Size,
		Description:     req.Description,
		AromaNotes:      req.AromaNotes,
		OlfactiveFamily: req.OlfactiveFamily,
		Mood:            req.Mood,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Update product", err)
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles product deletion
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, "Delete product", err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, messageResponse{Message: "Product deleted"})
}
