package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"quiz-live-service/internal/app"
	"quiz-live-service/internal/domain"
)

// QuizHandler serves quiz catalog CRUD.
type QuizHandler struct {
	catalog *app.QuizCatalog
}

func NewQuizHandler(catalog *app.QuizCatalog) *QuizHandler {
	return &QuizHandler{catalog: catalog}
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.Quiz
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := h.catalog.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.Quiz
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := h.catalog.Update(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
