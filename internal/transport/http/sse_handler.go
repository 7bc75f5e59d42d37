package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"quiz-live-service/internal/app"
	"quiz-live-service/internal/domain"
)

// SSEHandler streams a room's events to one subscriber as text/event-stream.
type SSEHandler struct {
	engine    *app.Engine
	keepalive time.Duration
	clock     clockwork.Clock
	logger    zerolog.Logger
}

// DefaultKeepalive is the interval of SSE ping comments and websocket pings.
const DefaultKeepalive = 15 * time.Second

func NewSSEHandler(engine *app.Engine, keepalive time.Duration, clock clockwork.Clock, logger zerolog.Logger) *SSEHandler {
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}
	return &SSEHandler{engine: engine, keepalive: keepalive, clock: clock, logger: logger}
}

func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "streaming unsupported"})
		return
	}

	code := mux.Vars(r)["code"]
	query := r.URL.Query()
	sub, err := h.engine.Subscribe(r.Context(), code, query.Get("participantId"), query.Get("adminSecret"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger := h.logger.With().Str("room", code).Str("subscriber_id", sub.ID()).Logger()
	logger.Debug().Bool("admin", sub.Role().IsAdmin()).Msg("event stream opened")
	defer logger.Debug().Msg("event stream closed")

	ticker := h.clock.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-sub.Frames():
			if !ok {
				return
			}
			if err := writeEvent(w, frame); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.Chan():
			if _, err := fmt.Fprintf(w, ": ping %d\n\n", h.clock.Now().UnixMilli()); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, frame domain.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame.Type, data)
	return err
}
