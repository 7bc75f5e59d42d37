package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"quiz-live-service/internal/app"
)

// RouterConfig carries the transport settings.
type RouterConfig struct {
	Keepalive      time.Duration
	AllowedOrigins []string
	Clock          clockwork.Clock
	Logger         zerolog.Logger
}

// NewRouter wires every HTTP, SSE and websocket route.
func NewRouter(engine *app.Engine, catalog *app.QuizCatalog, cfg RouterConfig) http.Handler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	rooms := NewRoomsHandler(engine)
	quizzes := NewQuizHandler(catalog)
	events := NewSSEHandler(engine, cfg.Keepalive, cfg.Clock, cfg.Logger)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})
	ws := NewWSHandler(engine, cfg.Keepalive, c.OriginAllowed, cfg.Logger)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ws", ws.ServeWS).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", rooms.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms", rooms.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", rooms.Info).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/join", rooms.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/answer", rooms.Answer).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/action", rooms.Action).Methods(http.MethodPost)
	api.Handle("/rooms/{code}/events", events).Methods(http.MethodGet)

	api.HandleFunc("/quizzes", quizzes.List).Methods(http.MethodGet)
	api.HandleFunc("/quizzes", quizzes.Create).Methods(http.MethodPost)
	api.HandleFunc("/quizzes/{id}", quizzes.Get).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/{id}", quizzes.Update).Methods(http.MethodPut)
	api.HandleFunc("/quizzes/{id}", quizzes.Delete).Methods(http.MethodDelete)

	return LogMiddleware(cfg.Logger)(c.Handler(router))
}
