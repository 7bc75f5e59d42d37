package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-live-service/internal/app"
	"quiz-live-service/internal/config"
)

func TestListenPort(t *testing.T) {
	assert.Equal(t, "9000", listenPort("9000", "8081"))
	assert.Equal(t, "8081", listenPort("", "8081"))
	assert.Equal(t, "8080", listenPort("", ""))
}

func TestEngineSettings(t *testing.T) {
	var cfg config.Config
	assert.Equal(t, app.DefaultSettings(), engineSettings(cfg))

	cfg.Engine.Retention = "30m"
	cfg.Engine.AnswerGrace = "bogus"
	cfg.Engine.MaxParticipants = 10
	got := engineSettings(cfg)
	assert.Equal(t, 30*time.Minute, got.Retention)
	assert.Equal(t, time.Second, got.AnswerGrace)
	assert.Equal(t, 10, got.MaxParticipants)
}

func TestDemoQuizzesAreValid(t *testing.T) {
	quizzes := demoQuizzes(time.Now())
	require.NotEmpty(t, quizzes)
	for _, quiz := range quizzes {
		require.NoError(t, quiz.Validate(), quiz.ID)
	}
}
