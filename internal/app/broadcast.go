package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"quiz-live-service/internal/domain"
)

// Role identifies what a subscriber is allowed to see.
type Role struct {
	// ParticipantID is empty for the room admin.
	ParticipantID string
}

// AdminRole is the role of the room's admin screen.
func AdminRole() Role { return Role{} }

// ParticipantRole is the role of one participant's device.
func ParticipantRole(id string) Role { return Role{ParticipantID: id} }

func (r Role) IsAdmin() bool { return r.ParticipantID == "" }

// Subscriber is one push channel bound to a room. Frames is closed when the
// subscriber is dropped, closed by the caller, or the room expires.
type Subscriber struct {
	id     string
	code   string
	role   Role
	frames chan domain.Frame
	hub    *hub
}

func (s *Subscriber) ID() string                  { return s.id }
func (s *Subscriber) RoomCode() string            { return s.code }
func (s *Subscriber) Role() Role                  { return s.role }
func (s *Subscriber) Frames() <-chan domain.Frame { return s.frames }

// Close detaches the subscriber from its room. Safe to call repeatedly.
func (s *Subscriber) Close() {
	s.hub.remove(s)
}

// message is a room event resolved per subscriber at send time. A nil
// variant means that role does not receive the event.
type message struct {
	admin       domain.Payload
	participant func(participantID string) domain.Payload
}

func toEveryone(p domain.Payload) message {
	return message{admin: p, participant: func(string) domain.Payload { return p }}
}

func toAdmins(p domain.Payload) message {
	return message{admin: p}
}

func splitByRole(admin domain.Payload, participant func(string) domain.Payload) message {
	return message{admin: admin, participant: participant}
}

func (m message) payloadFor(role Role) domain.Payload {
	if role.IsAdmin() {
		return m.admin
	}
	if m.participant == nil {
		return nil
	}
	return m.participant(role.ParticipantID)
}

// hub is a room's subscriber set. Sends never block: a subscriber whose
// buffer is full is dropped.
type hub struct {
	code   string
	buffer int
	now    func() time.Time
	logger zerolog.Logger

	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	closed bool
}

func newHub(code string, buffer int, now func() time.Time, logger zerolog.Logger) *hub {
	if buffer < 1 {
		buffer = 1
	}
	return &hub{
		code:   code,
		buffer: buffer,
		now:    now,
		logger: logger,
		subs:   make(map[*Subscriber]struct{}),
	}
}

func (h *hub) attach(role Role) (*Subscriber, bool) {
	s := &Subscriber{
		id:     uuid.NewString(),
		code:   h.code,
		role:   role,
		frames: make(chan domain.Frame, h.buffer),
		hub:    h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	h.subs[s] = struct{}{}
	h.logger.Debug().
		Str("subscriber_id", s.id).
		Bool("admin", role.IsAdmin()).
		Int("subscribers", len(h.subs)).
		Msg("subscriber attached")
	return s, true
}

func (h *hub) remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

func (h *hub) removeLocked(s *Subscriber) {
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.frames)
}

func (h *hub) publish(m message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		if p := m.payloadFor(s.role); p != nil {
			h.deliverLocked(s, p)
		}
	}
}

func (h *hub) sendTo(s *Subscriber, p domain.Payload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		h.deliverLocked(s, p)
	}
}

func (h *hub) deliverLocked(s *Subscriber, p domain.Payload) {
	frame := domain.Frame{Type: p.EventType(), Data: p, Timestamp: h.now().UnixMilli()}
	select {
	case s.frames <- frame:
	default:
		h.logger.Warn().
			Str("subscriber_id", s.id).
			Str("event_type", string(frame.Type)).
			Msg("subscriber buffer full, dropping subscriber")
		h.removeLocked(s)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		h.removeLocked(s)
	}
	h.closed = true
}
