package repository

import (
	"context"
	"errors"
	"fmt"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/domain"
)

var (
	ErrIslandNotFound = errors.New("island not found")
)

// IslandRepository defines the interface for island data access
type IslandRepository interface {
	Create(ctx context.Context, island *domain.Island) error
	Update(ctx context.Context, id string, patch domain.IslandPatch) error
	FindByID(ctx context.Context, id string) (*domain.Island, error)
	List(ctx context.Context, limit int64) ([]*domain.Island, error)
}

type islandRepository struct {
	islands database.Collection
}

// NewIslandRepository creates a new instance of IslandRepository
func NewIslandRepository(store database.Store) IslandRepository {
	return &islandRepository{islands: store.Collection(database.IslandsCollection)}
}

// Create inserts a new island document
func (r *islandRepository) Create(ctx context.Context, island *domain.Island) error {
	if err := r.islands.Insert(ctx, island); err != nil {
		return fmt.Errorf("failed to create island: %w", err)
	}
	return nil
}

// Update merges the non-nil fields of the patch into the stored island
func (r *islandRepository) Update(ctx context.Context, id string, patch domain.IslandPatch) error {
	// Only the fields present in the patch are written
	matched, err := r.islands.Update(ctx, database.Filter{"id": id}, islandFields(patch))
	if err != nil {
		return fmt.Errorf("failed to update island: %w", err)
	}

	// Check if the document was found
	if matched == 0 {
		return ErrIslandNotFound
	}

	return nil
}

// FindByID retrieves a island by its ID
func (r *islandRepository) FindByID(ctx context.Context, id string) (*domain.Island, error) {
	island := &domain.Island{}
	if err := r.islands.FindOne(ctx, database.Filter{"id": id}, island); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrIslandNotFound
		}
		return nil, fmt.Errorf("failed to find island by ID: %w", err)
	}
	return island, nil
}

// List returns islands in insertion order
func (r *islandRepository) List(ctx context.Context, limit int64) ([]*domain.Island, error) {
	islands := []*domain.Island{}
	if err := r.islands.Find(ctx, database.Filter{}, database.FindOptions{Limit: limit}, &islands); err != nil {
		return nil, fmt.Errorf("failed to list islands: %w", err)
	}
	return islands, nil
}

func islandFields(patch domain.IslandPatch) database.Fields {
	fields := database.Fields{}
	setString(fields, "name", patch.Name)
	setString(fields, "slug", patch.Slug)
	setString(fields, "story", patch.Story)
	setString(fields, "mood", patch.Mood)
	setString(fields, "image_url", patch.ImageURL)
	if patch.AromaNotes != nil {
		fields["aroma_notes"] = *patch.AromaNotes
	}
	return fields
}

func setString(fields database.Fields, key string, value *string) {
	if value != nil {
		fields[key] = *value
	}
}
