package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"quiz-live-service/internal/app"
	"quiz-live-service/internal/domain"
)

// RoomsHandler exposes room lifecycle calls over JSON.
type RoomsHandler struct {
	engine *app.Engine
}

func NewRoomsHandler(engine *app.Engine) *RoomsHandler {
	return &RoomsHandler{engine: engine}
}

type createRoomRequest struct {
	QuizID string `json:"quizId"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type answerRequest struct {
	ParticipantID string `json:"participantId"`
	AnswerIndex   *int   `json:"answerIndex"`
}

type actionRequest struct {
	Action      domain.AdminAction `json:"action"`
	AdminSecret string             `json:"adminSecret"`
}

type actionResponse struct {
	Success bool `json:"success"`
}

func (h *RoomsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.QuizID == "" {
		writeError(w, domain.Invalid("quizId is required"))
		return
	}
	creds, err := h.engine.CreateRoom(r.Context(), req.QuizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, creds)
}

func (h *RoomsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.ActiveRooms(r.Context()))
}

func (h *RoomsHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.engine.RoomInfo(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *RoomsHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.engine.Join(r.Context(), mux.Vars(r)["code"], req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Answer replies {accepted:false, reason} with the mapped status when the
// engine refuses the answer, so clients can show the reason inline.
func (h *RoomsHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ParticipantID == "" || req.AnswerIndex == nil {
		writeError(w, domain.Invalid("participantId and answerIndex are required"))
		return
	}
	receipt, err := h.engine.SubmitAnswer(r.Context(), mux.Vars(r)["code"], req.ParticipantID, *req.AnswerIndex)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			writeError(w, err)
			return
		}
		writeJSON(w, status, domain.AnswerReceipt{Accepted: false, Reason: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *RoomsHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.AdminSecret == "" {
		writeError(w, domain.ErrAdminUnauthorized)
		return
	}
	if err := h.engine.Act(r.Context(), mux.Vars(r)["code"], req.AdminSecret, req.Action); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Success: true})
}
