package repository

import (
	"context"
	"errors"
	"fmt"

	"archipelago-scent/internal/database"
	"archipelago-scent/internal/domain"
)

var (
	ErrQuizNotFound = errors.New("quiz not configured")
)

// QuizRepository stores the singleton quiz configuration
type QuizRepository interface {
	Get(ctx context.Context) (*domain.Quiz, error)
	Replace(ctx context.Context, quiz *domain.Quiz) error
}

type quizRepository struct {
	quiz database.Collection
}

// NewQuizRepository creates a new instance of QuizRepository
func NewQuizRepository(store database.Store) QuizRepository {
	return &quizRepository{quiz: store.Collection(database.QuizCollection)}
}

func (r *quizRepository) Get(ctx context.Context) (*domain.Quiz, error) {
	quiz := &domain.Quiz{}
	if err := r.quiz.FindOne(ctx, database.Filter{"id": domain.QuizID}, quiz); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to find quiz: %w", err)
	}
	return quiz, nil
}

// Replace overwrites the whole question list of the singleton
func (r *quizRepository) Replace(ctx context.Context, quiz *domain.Quiz) error {
	quiz.ID = domain.QuizID
	fields := database.Fields{
		"questions":  quiz.Questions,
		"updated_at": quiz.UpdatedAt,
	}

	if err := r.quiz.Upsert(ctx, database.Filter{"id": domain.QuizID}, fields); err != nil {
		return fmt.Errorf("failed to replace quiz: %w", err)
	}
	return nil
}
