package app

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"quiz-live-service/internal/domain"
)

// QuizStore is the editable quiz storage (in-memory, Postgres).
type QuizStore interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error
}

// QuizInvalidator drops cached copies of a quiz after it changes.
type QuizInvalidator interface {
	Invalidate(ctx context.Context, quizID string) error
}

// QuizCatalog contains the quiz editing use cases.
type QuizCatalog struct {
	store  QuizStore
	cache  QuizInvalidator
	engine *Engine
	clock  Clock
}

func NewQuizCatalog(store QuizStore, cache QuizInvalidator, engine *Engine, clock Clock) *QuizCatalog {
	return &QuizCatalog{store: store, cache: cache, engine: engine, clock: clock}
}

// List returns quiz summaries, newest first.
func (c *QuizCatalog) List(ctx context.Context) ([]domain.QuizSummary, error) {
	quizzes, err := c.store.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(quizzes, func(a, b domain.Quiz) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		}
		return 0
	})
	out := make([]domain.QuizSummary, len(quizzes))
	for i, q := range quizzes {
		out[i] = q.Summary()
	}
	return out, nil
}

func (c *QuizCatalog) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	return c.store.LoadQuiz(ctx, quizID)
}

// Create validates and stores a new quiz with fresh ids.
func (c *QuizCatalog) Create(ctx context.Context, input domain.Quiz) (domain.Quiz, error) {
	if err := input.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	now := c.clock.Now().UnixMilli()
	quiz := domain.Quiz{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Questions:   withFreshIDs(input.Questions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Update replaces a quiz's content. Running rooms keep their snapshot.
func (c *QuizCatalog) Update(ctx context.Context, quizID string, input domain.Quiz) (domain.Quiz, error) {
	if err := input.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	existing, err := c.store.LoadQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	existing.Name = input.Name
	existing.Description = input.Description
	existing.Questions = withFreshIDs(input.Questions)
	existing.UpdatedAt = c.clock.Now().UnixMilli()
	if err := c.store.SaveQuiz(ctx, existing); err != nil {
		return domain.Quiz{}, err
	}
	if err := c.cache.Invalidate(ctx, quizID); err != nil {
		return domain.Quiz{}, err
	}
	return existing, nil
}

// Delete removes a quiz unless an unfinished room plays it.
func (c *QuizCatalog) Delete(ctx context.Context, quizID string) error {
	if c.engine.QuizInUse(quizID) {
		return domain.ErrQuizInUse
	}
	if err := c.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	return c.cache.Invalidate(ctx, quizID)
}

func withFreshIDs(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.ID = uuid.NewString()
		out[i] = q
	}
	return out
}
