package repository

import (
	"context"
	"errors"
	"fmt"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, limit int64) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type orderRepository struct {
	orders database.Collection
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(store database.Store) OrderRepository {
	return &orderRepository{orders: store.Collection(database.OrdersCollection)}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.orders.Insert(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}
	if err := r.orders.FindOne(ctx, database.Filter{"id": id}, order); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return order, nil
}

// List returns orders newest first
func (r *orderRepository) List(ctx context.Context, limit int64) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	opts := database.FindOptions{SortBy: "created_at", Order: database.SortDesc, Limit: limit}
	if err := r.orders.Find(ctx, database.Filter{}, opts, &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus writes only the status field; the total is never touched
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	matched, err := r.orders.Update(ctx, database.Filter{"id": id}, database.Fields{"status": status})
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	// Check if the order was found
	if matched == 0 {
		return ErrOrderNotFound
	}

	return nil
}
