package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/domain"
)

var (
	ErrThemeNotFound = errors.New("theme not configured")
)

// ThemeRepository stores the singleton theme settings
type ThemeRepository interface {
	Get(ctx context.Context) (*domain.ThemeSettings, error)
	Save(ctx context.Context, patch domain.ThemePatch, updatedAt time.Time) error
}

type themeRepository struct {
	theme database.Collection
}

// NewThemeRepository creates a new instance of ThemeRepository
func NewThemeRepository(store database.Store) ThemeRepository {
	return &themeRepository{theme: store.Collection(database.ThemeCollection)}
}

func (r *themeRepository) Get(ctx context.Context) (*domain.ThemeSettings, error) {
	theme := &domain.ThemeSettings{}
	if err := r.theme.FindOne(ctx, database.Filter{"id": domain.ThemeID}, theme); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrThemeNotFound
		}
		return nil, fmt.Errorf("failed to find theme: %w", err)
	}
	return theme, nil
}

// Save upserts the singleton, merging only the non-nil fields of the patch
func (r *themeRepository) Save(ctx context.Context, patch domain.ThemePatch, updatedAt time.Time) error {
	// Collect the fields present in the patch
	fields := database.Fields{"updated_at": updatedAt}
	setString(fields, "primary_color", patch.PrimaryColor)
	setString(fields, "secondary_color", patch.SecondaryColor)
	setString(fields, "accent_color", patch.AccentColor)
	if patch.HeroImages != nil {
		fields["hero_images"] = patch.HeroImages
	}

	// Create the singleton on first write
	if err := r.theme.Upsert(ctx, database.Filter{"id": domain.ThemeID}, fields); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
