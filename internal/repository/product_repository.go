package repository

import (
	"context"
	"errors"
	"fmt"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id string, patch domain.ProductPatch) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, limit int64) ([]*domain.Product, error)
}

type productRepository struct {
	products database.Collection
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(store database.Store) ProductRepository {
	return &productRepository{products: store.Collection(database.ProductsCollection)}
}

// Create inserts a new product document
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.products.Insert(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update merges the non-nil fields of the patch into the stored product
func (r *productRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) error {
	// Only the fields present in the patch are written
	matched, err := r.products.Update(ctx, database.Filter{"id": id}, productFields(patch))
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	// Check if the document was found
	if matched == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product by ID
func (r *productRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.products.Delete(ctx, database.Filter{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	// Check if the product was found
	if deleted == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by its ID
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	product := &domain.Product{}
	if err := r.products.FindOne(ctx, database.Filter{"id": id}, product); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// List returns products matching every non-empty field of the filter
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, limit int64) ([]*domain.Product, error) {
	// Build the equality filter from the fields that are set
	query := database.Filter{}
	if filter.IslandID != "" {
		query["island_id"] = filter.IslandID
	}
	if filter.Mood != "" {
		query["mood"] = filter.Mood
	}
	if filter.OlfactiveFamily != "" {
		query["olfactive_family"] = filter.OlfactiveFamily
	}

	products := []*domain.Product{}
	if err := r.products.Find(ctx, query, database.FindOptions{Limit: limit}, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// productFields maps the non-nil patch fields to document fields
func productFields(patch domain.ProductPatch) database.Fields {
	fields := database.Fields{}
	setString(fields, "name", patch.Name)
	setString(fields, "size", patch.Size)
	setString(fields, "description", patch.Description)
	setString(fields, "olfactive_family", patch.OlfactiveFamily)
	setString(fields, "mood", patch.Mood)
	setString(fields, "image_url", patch.ImageURL)
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Stock != nil {
		fields["stock"] = *patch.Stock
	}
	if patch.AromaNotes != nil {
		fields["aroma_notes"] = *patch.AromaNotes
	}
	return fields
}
