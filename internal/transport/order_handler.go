package transport

import (
	"net/http"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/middleware"
	"archipelago-scent/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderRequest represents the customer checkout payload
type OrderRequest struct {
	CustomerName    string             `json:"customer_name" validate:"required"`
	CustomerEmail   string             `json:"customer_email" validate:"required,email"`
	CustomerPhone   string             `json:"customer_phone" validate:"required"`
	CustomerAddress string             `json:"customer_address" validate:"required"`
	Items           []domain.OrderItem `json:"items" validate:"required,min=1,dive"`
	Notes           *string            `json:"notes"`
}

// OrderStatusRequest represents an admin status change.
// Any non-empty status is accepted; the known ones are the domain.OrderStatus constants.
type OrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post("/orders", h.CreateOrder)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/admin/orders", h.ListOrders)
		r.Put("/admin/orders/{id}", h.UpdateStatus)
	})
}

// CreateOrder handles customer checkout
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	order, err := h.orderService.Create(r.Context(), service.OrderInput{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Items:           req.Items,
		Notes:           req.Notes,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, "Create order", err)
		return
	}

	h.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListOrders returns orders newest first
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "List orders", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateStatus changes the status of an order
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req OrderStatusRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondWithServiceError(w, h.logger, "Update order status", err)
		return
	}

	h.logger.Info("Order status updated", zap.String("order_id", order.ID), zap.String("status", string(order.Status)))
	middleware.RespondWithJSON(w, http.StatusOK, order)
}
