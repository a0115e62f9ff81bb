package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/repository"

	"github.com/google/uuid"
)

const (
	// FAQPageSize bounds the faq listing
	FAQPageSize = 100
)

// ContentService defines the interface for theme settings and faq content
type ContentService interface {
	GetTheme(ctx context.Context) (*domain.ThemeSettings, error)
	UpdateTheme(ctx context.Context, patch domain.ThemePatch) (*domain.ThemeSettings, error)

	ListFAQ(ctx context.Context) ([]*domain.FAQItem, error)
	CreateFAQ(ctx context.Context, question, answer string, order int) (*domain.FAQItem, error)
	UpdateFAQ(ctx context.Context, id string, patch domain.FAQPatch) (*domain.FAQItem, error)
	DeleteFAQ(ctx context.Context, id string) error
}

type contentService struct {
	themeRepo repository.ThemeRepository
	faqRepo   repository.FAQRepository
}

// NewContentService creates a new instance of ContentService
func NewContentService(themeRepo repository.ThemeRepository, faqRepo repository.FAQRepository) ContentService {
	return &contentService{
		themeRepo: themeRepo,
		faqRepo:   faqRepo,
	}
}

// GetTheme returns the saved theme or the default palette
func (s *contentService) GetTheme(ctx context.Context) (*domain.ThemeSettings, error) {
	theme, err := s.themeRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrThemeNotFound) {
			return domain.DefaultTheme(), nil
		}
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	return withThemeDefaults(theme), nil
}

// UpdateTheme merges the patch into the singleton, creating it on first write
func (s *contentService) UpdateTheme(ctx context.Context, patch domain.ThemePatch) (*domain.ThemeSettings, error) {
	// Upsert the singleton with the non-nil fields
	if err := s.themeRepo.Save(ctx, patch, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to update theme: %w", err)
	}

	// Read back the merged document
	theme, err := s.themeRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	return withThemeDefaults(theme), nil
}

// withThemeDefaults fills colors a partial first write left unset
func withThemeDefaults(theme *domain.ThemeSettings) *domain.ThemeSettings {
	defaults := domain.DefaultTheme()
	if theme.PrimaryColor == "" {
		theme.PrimaryColor = defaults.PrimaryColor
	}
	if theme.SecondaryColor == "" {
		theme.SecondaryColor = defaults.SecondaryColor
	}
	if theme.AccentColor == "" {
		theme.AccentColor = defaults.AccentColor
	}
	if theme.HeroImages == nil {
		theme.HeroImages = []string{}
	}
	return theme
}

func (s *contentService) ListFAQ(ctx context.Context) ([]*domain.FAQItem, error) {
	items, err := s.faqRepo.List(ctx, FAQPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list faq items: %w", err)
	}
	return items, nil
}

func (s *contentService) CreateFAQ(ctx context.Context, question, answer string, order int) (*domain.FAQItem, error) {
	item := &domain.FAQItem{
		ID:        uuid.New().String(),
		Question:  question,
		Answer:    answer,
		Order:     order,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.faqRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create faq item: %w", err)
	}

	return item, nil
}

// UpdateFAQ applies the patch, then returns the stored item
func (s *contentService) UpdateFAQ(ctx context.Context, id string, patch domain.FAQPatch) (*domain.FAQItem, error) {
	// Apply the patch; NotFound when the item is absent
	if err := s.faqRepo.Update(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update faq item: %w", err)
	}

	item, err := s.faqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get faq item: %w", err)
	}
	return item, nil
}

func (s *contentService) DeleteFAQ(ctx context.Context, id string) error {
	if err := s.faqRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete faq item: %w", err)
	}
	return nil
}
