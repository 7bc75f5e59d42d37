package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"quiz-live-service/internal/app"
	"quiz-live-service/internal/domain"
	"quiz-live-service/internal/infra/memory"
)

type testServer struct {
	*httptest.Server
	engine      *app.Engine
	engineClock *clockwork.FakeClock
	httpClock   *clockwork.FakeClock
}

// newTestServer serves the full router; allowedOrigins defaults to any.
func newTestServer(t *testing.T, allowedOrigins ...string) *testServer {
	t.Helper()
	engineClock := clockwork.NewFakeClock()
	httpClock := clockwork.NewFakeClock()
	store := memory.NewQuizStore(sampleQuiz())
	quizzes := memory.NewQuizRepository(store, time.Minute)
	engine := app.NewEngine(memory.NewRoomStore(), quizzes, app.WithClock(engineClock))
	catalog := app.NewQuizCatalog(store, quizzes, engine, engineClock)

	server := httptest.NewServer(NewRouter(engine, catalog, RouterConfig{
		Keepalive:      15 * time.Second,
		AllowedOrigins: allowedOrigins,
		Clock:          httpClock,
		Logger:         zerolog.Nop(),
	}))
	t.Cleanup(func() {
		engine.Shutdown()
		server.Close()
	})
	return &testServer{Server: server, engine: engine, engineClock: engineClock, httpClock: httpClock}
}

func (s *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:   "quiz-1",
		Name: "Arithmetic",
		Questions: []domain.Question{
			{
				ID:           "q1",
				Text:         "What is 2 + 2?",
				Answers:      [4]string{"3", "4", "5", "22"},
				CorrectIndex: 1,
				Points:       1,
				TimeLimit:    30,
			},
		},
	}
}
