package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-live-service/internal/domain"
)

func TestQuizStoreCopiesQuestions(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore(sampleQuiz())

	loaded, err := store.LoadQuiz(ctx, "quiz-1")
	require.NoError(t, err)
	loaded.Questions[0].Text = "edited outside the store"

	again, err := store.LoadQuiz(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, "What is 2 + 2?", again.Questions[0].Text)
}

func TestQuizStoreSaveListDelete(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore(sampleQuiz())

	second := sampleQuiz()
	second.ID = "quiz-2"
	require.NoError(t, store.SaveQuiz(ctx, second))

	all, err := store.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.DeleteQuiz(ctx, "quiz-2"))
	assert.ErrorIs(t, store.DeleteQuiz(ctx, "quiz-2"), domain.ErrQuizNotFound)
	_, err = store.LoadQuiz(ctx, "quiz-2")
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
}
