package service

import (
	"context"
	"fmt"
	"time"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/repository"

	"github.com/google/uuid"
)

const (
	// OrderListLimit bounds the admin order listing
	OrderListLimit = 1000
)

// OrderInput holds the customer-supplied part of a new order
type OrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	Items           []domain.OrderItem
	Notes           *string
}

// OrderService defines the interface for order intake
type OrderService interface {
	Create(ctx context.Context, input OrderInput) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// Create persists a pending order whose total is computed from the submitted items only
func (s *orderService) Create(ctx context.Context, input OrderInput) (*domain.Order, error) {
	items := input.Items
	if items == nil {
		items = []domain.OrderItem{}
	}

	order := &domain.Order{
		ID:              uuid.New().String(),
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		CustomerAddress: input.CustomerAddress,
		Items:           items,
		Total:           domain.OrderTotal(items),
		Status:          domain.OrderStatusPending,
		Notes:           input.Notes,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

func (s *orderService) List(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx, OrderListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus stores the given status as is; neither the value nor the transition is restricted
func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	// Write the new status, NotFound when the order is absent
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	// Read back the stored order
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}
