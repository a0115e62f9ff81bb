package repository

import (
	"context"
	"errors"
	"fmt"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/domain"
)

var (
	ErrFAQNotFound = errors.New("faq item not found")
)

// FAQRepository defines the interface for faq data access
type FAQRepository interface {
	Create(ctx context.Context, item *domain.FAQItem) error
	Update(ctx context.Context, id string, patch domain.FAQPatch) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.FAQItem, error)
	List(ctx context.Context, limit int64) ([]*domain.FAQItem, error)
}

type faqRepository struct {
	faq database.Collection
}

// NewFAQRepository creates a new instance of FAQRepository
func NewFAQRepository(store database.Store) FAQRepository {
	return &faqRepository{faq: store.Collection(database.FAQCollection)}
}

func (r *faqRepository) Create(ctx context.Context, item *domain.FAQItem) error {
	if err := r.faq.Insert(ctx, item); err != nil {
		return fmt.Errorf("failed to create faq item: %w", err)
	}
	return nil
}

// Update merges the non-nil fields of the patch into the stored item
func (r *faqRepository) Update(ctx context.Context, id string, patch domain.FAQPatch) error {
	// Collect the fields present in the patch
	fields := database.Fields{}
	setString(fields, "question", patch.Question)
	setString(fields, "answer", patch.Answer)
	if patch.Order != nil {
		fields["order"] = *patch.Order
	}

	// Apply the update
	matched, err := r.faq.Update(ctx, database.Filter{"id": id}, fields)
	if err != nil {
		return fmt.Errorf("failed to update faq item: %w", err)
	}

	// Check if the item was found
	if matched == 0 {
		return ErrFAQNotFound
	}

	return nil
}

func (r *faqRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.faq.Delete(ctx, database.Filter{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete faq item: %w", err)
	}

	// Check if the item was found
	if deleted == 0 {
		return ErrFAQNotFound
	}

	return nil
}

func (r *faqRepository) FindByID(ctx context.Context, id string) (*domain.FAQItem, error) {
	item := &domain.FAQItem{}
	if err := r.faq.FindOne(ctx, database.Filter{"id": id}, item); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrFAQNotFound
		}
		return nil, fmt.Errorf("failed to find faq item by ID: %w", err)
	}
	return item, nil
}

// List returns items in ascending display order
func (r *faqRepository) List(ctx context.Context, limit int64) ([]*domain.FAQItem, error) {
	items := []*domain.FAQItem{}
	opts := database.FindOptions{SortBy: "order", Order: database.SortAsc, Limit: limit}
	if err := r.faq.Find(ctx, database.Filter{}, opts, &items); err != nil {
		return nil, fmt.Errorf("failed to list faq items: %w", err)
	}
	return items, nil
}
