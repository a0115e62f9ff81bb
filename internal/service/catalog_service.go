package service

import (
	"context"
	"fmt"
	"time"

	"archipelago-scent/internal/domain"
	"archipelago-scent/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	// CatalogPageSize bounds island and product listings
	CatalogPageSize = 100
)

// CatalogService defines the interface for island and product management
type CatalogService interface {
	ListIslands(ctx context.Context) ([]*domain.Island, error)
	GetIsland(ctx context.Context, id string) (*domain.Island, error)
	CreateIsland(ctx context.Context, island *domain.Island) (*domain.Island, error)
	UpdateIsland(ctx context.Context, id string, patch domain.IslandPatch) (*domain.Island, error)

	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type catalogService struct {
	islandRepo  repository.IslandRepository
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(islandRepo repository.IslandRepository, productRepo repository.ProductRepository) CatalogService {
	return &catalogService{
		islandRepo:  islandRepo,
		productRepo: productRepo,
	}
}

func (s *catalogService) ListIslands(ctx context.Context) ([]*domain.Island, error) {
	islands, err := s.islandRepo.List(ctx, CatalogPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list islands: %w", err)
	}
	return islands, nil
}

func (s *catalogService) GetIsland(ctx context.Context, id string) (*domain.Island, error) {
	island, err := s.islandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get island: %w", err)
	}
	return island, nil
}

// CreateIsland assigns server-side fields and derives a slug from the name when none is given
func (s *catalogService) CreateIsland(ctx context.Context, island *domain.Island) (*domain.Island, error) {
	// Assign server-side fields
	island.ID = uuid.New().String()
	island.CreatedAt = time.Now().UTC()
	if island.Slug == "" {
		island.Slug = slug.Make(island.Name)
	}
	// Store empty note lists rather than null
	if island.AromaNotes.Top == nil {
		island.AromaNotes.Top = []string{}
	}
	if island.AromaNotes.Heart == nil {
		island.AromaNotes.Heart = []string{}
	}
	if island.AromaNotes.Base == nil {
		island.AromaNotes.Base = []string{}
	}

	// Save to database
	if err := s.islandRepo.Create(ctx, island); err != nil {
		return nil, fmt.Errorf("failed to create island: %w", err)
	}

	return island, nil
}

// UpdateIsland applies the patch, then returns the stored island
func (s *catalogService) UpdateIsland(ctx context.Context, id string, patch domain.IslandPatch) (*domain.Island, error) {
	// NotFound comes back from the repository before anything is written
	if err := s.islandRepo.Update(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update island: %w", err)
	}
	return s.GetIsland(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, filter, CatalogPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// CreateProduct fills server-side fields; the island name is denormalized from the island when omitted
func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	// Resolve the island name when the caller left it out
	if product.IslandName == "" {
		island, err := s.islandRepo.FindByID(ctx, product.IslandID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product island: %w", err)
		}
		product.IslandName = island.Name
	}

	// Assign server-side fields
	product.ID = uuid.New().String()
	product.CreatedAt = time.Now().UTC()
	product.Reviews = []domain.Review{}
	if product.Size == "" {
		product.Size = domain.DefaultProductSize
	}

	// Save to database
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct applies the patch, then returns the stored product
func (s *catalogService) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	// NotFound comes back from the repository before anything is written
	if err := s.productRepo.Update(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
