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
	// RecommendedProductsLimit bounds the products returned with a recommendation
	RecommendedProductsLimit = 10
)

// QuizService defines the interface for the recommendation quiz
type QuizService interface {
	Get(ctx context.Context) (*domain.Quiz, error)
	Replace(ctx context.Context, questions []domain.QuizQuestion) (*domain.Quiz, error)
	Submit(ctx context.Context, answers []string) (*domain.QuizResult, error)
}

type quizService struct {
	quizRepo    repository.QuizRepository
	islandRepo  repository.IslandRepository
	productRepo repository.ProductRepository
}

// NewQuizService creates a new instance of QuizService
func NewQuizService(
	quizRepo repository.QuizRepository,
	islandRepo repository.IslandRepository,
	productRepo repository.ProductRepository,
) QuizService {
	return &quizService{
		quizRepo:    quizRepo,
		islandRepo:  islandRepo,
		productRepo: productRepo,
	}
}

// Get returns the stored quiz, or an empty one when none was saved yet
func (s *quizService) Get(ctx context.Context) (*domain.Quiz, error) {
	quiz, err := s.quizRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQuizNotFound) {
			return &domain.Quiz{
				ID:        domain.QuizID,
				Questions: []domain.QuizQuestion{},
				UpdatedAt: time.Now().UTC(),
			}, nil
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.Questions == nil {
		quiz.Questions = []domain.QuizQuestion{}
	}
	return quiz, nil
}

// Replace stores the question list wholesale
func (s *quizService) Replace(ctx context.Context, questions []domain.QuizQuestion) (*domain.Quiz, error) {
	if questions == nil {
		questions = []domain.QuizQuestion{}
	}
	// Give new questions an ID
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = uuid.New().String()
		}
		if questions[i].Options == nil {
			questions[i].Options = []domain.QuizOption{}
		}
	}

	quiz := &domain.Quiz{
		ID:        domain.QuizID,
		Questions: questions,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.quizRepo.Replace(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to replace quiz: %w", err)
	}

	return quiz, nil
}

// Submit scores the answers and returns the winning island with its products
func (s *quizService) Submit(ctx context.Context, answers []string) (*domain.QuizResult, error) {
	// Load the configured quiz; NotFound when none was saved
	quiz, err := s.quizRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	// Score the answers
	winner, _, err := ScoreAnswers(quiz, answers)
	if err != nil {
		return nil, err
	}

	// The winning island may have been removed since the quiz was saved
	island, err := s.islandRepo.FindByID(ctx, winner)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommended island: %w", err)
	}

	// Recommend products from the winning island
	products, err := s.productRepo.List(ctx, domain.ProductFilter{IslandID: winner}, RecommendedProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommended products: %w", err)
	}

	return &domain.QuizResult{Island: island, Products: products}, nil
}
