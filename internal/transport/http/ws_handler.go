package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"quiz-live-service/internal/app"
	"quiz-live-service/internal/domain"
)

const wsWriteWait = 10 * time.Second

type WSHandler struct {
	engine    *app.Engine
	keepalive time.Duration
	logger    zerolog.Logger
	upgrader  websocket.Upgrader
}

// NewWSHandler accepts upgrades whose Origin passes originAllowed. Requests
// without an Origin header come from non-browser clients and are accepted.
func NewWSHandler(engine *app.Engine, keepalive time.Duration, originAllowed func(r *http.Request) bool, logger zerolog.Logger) *WSHandler {
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}
	if originAllowed == nil {
		originAllowed = func(*http.Request) bool { return true }
	}
	return &WSHandler{
		engine:    engine,
		keepalive: keepalive,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return r.Header.Get("Origin") == "" || originAllowed(r)
			},
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	AnswerIndex *int `json:"answerIndex"`
}

type actionPayload struct {
	Action domain.AdminAction `json:"action"`
}

// reply answers one inbound message; pushed room events go out as domain.Frame.
type reply struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorReply(err error) reply {
	return reply{Type: "error", Data: errorPayload{Message: err.Error()}}
}

// ServeWS subscribes the caller to a room and upgrades to a websocket.
// Participants may send "answer" messages, the admin "action" messages.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	participantID := query.Get("participantId")
	adminSecret := query.Get("adminSecret")
	if code == "" {
		writeError(w, domain.Invalid("missing code"))
		return
	}

	// Subscribe before upgrading so rejections keep their HTTP status.
	sub, err := h.engine.Subscribe(r.Context(), code, participantID, adminSecret)
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	logger := h.logger.With().Str("room", code).Str("subscriber_id", sub.ID()).Logger()
	logger.Debug().Bool("admin", sub.Role().IsAdmin()).Msg("websocket connected")
	defer logger.Debug().Msg("websocket disconnected")

	send := make(chan any, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	framesDone := make(chan struct{})

	// single writer: gorilla allows one concurrent writer per connection
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(h.keepalive)
		defer ticker.Stop()
		failed := false
		for {
			select {
			case msg, ok := <-send:
				if !ok {
					return
				}
				if failed {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(msg); err != nil {
					logger.Debug().Err(err).Msg("ws write error")
					failed = true
					_ = conn.Close()
				}
			case <-ticker.C:
				if failed {
					continue
				}
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					failed = true
					_ = conn.Close()
				}
			}
		}
	}()

	go func() {
		defer close(framesDone)
		for {
			select {
			case frame, ok := <-sub.Frames():
				if !ok {
					// dropped or room closed; end the read loop too
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "room closed"),
						time.Now().Add(wsWriteWait))
					_ = conn.Close()
					return
				}
				select {
				case send <- frame:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		send <- h.handleInbound(r, code, participantID, adminSecret, sub.Role(), inbound)
	}

	close(closeSignals)
	<-framesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handleInbound(r *http.Request, code, participantID, adminSecret string, role app.Role, inbound inboundMessage) reply {
	switch inbound.Type {
	case "answer":
		if role.IsAdmin() {
			return errorReply(domain.Invalid("admin cannot answer"))
		}
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorReply(domain.Invalid("invalid answer payload"))
		}
		if payload.AnswerIndex == nil {
			return errorReply(domain.Invalid("answerIndex is required"))
		}
		receipt, err := h.engine.SubmitAnswer(r.Context(), code, participantID, *payload.AnswerIndex)
		if err != nil {
			receipt = domain.AnswerReceipt{Accepted: false, Reason: err.Error()}
		}
		return reply{Type: "answer-result", Data: receipt}
	case "action":
		if !role.IsAdmin() {
			return errorReply(domain.ErrAdminUnauthorized)
		}
		var payload actionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorReply(domain.Invalid("invalid action payload"))
		}
		if err := h.engine.Act(r.Context(), code, adminSecret, payload.Action); err != nil {
			return errorReply(err)
		}
		return reply{Type: "action-result", Data: actionResponse{Success: true}}
	default:
		return errorReply(domain.Invalid("unsupported message type"))
	}
}
