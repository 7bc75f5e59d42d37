package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"quiz-live-service/internal/domain"
)

// RoomRepository abstracts how live rooms are indexed (in-memory, Redis, etc).
type RoomRepository interface {
	// Insert stores room unless its code is already taken.
	Insert(ctx context.Context, room *Room) bool
	Get(code string) (*Room, bool)
	Delete(code string)
	List() []*Room
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Settings are the engine's tunables.
type Settings struct {
	Retention        time.Duration
	SweepInterval    time.Duration
	AnswerGrace      time.Duration
	MaxParticipants  int
	SubscriberBuffer int
	JournalBuffer    int
}

// DefaultSettings returns the production defaults.
func DefaultSettings() Settings {
	return Settings{
		Retention:        2 * time.Hour,
		SweepInterval:    10 * time.Minute,
		AnswerGrace:      time.Second,
		MaxParticipants:  200,
		SubscriberBuffer: 32,
		JournalBuffer:    256,
	}
}

const maxCodeAttempts = 1000

// Engine is the registry of live rooms. It routes calls to the right room
// and expires rooms past their retention window.
type Engine struct {
	rooms    RoomRepository
	quizzes  QuizRepository
	clock    Clock
	logger   zerolog.Logger
	settings Settings
	journal  *journalWorker
	newCode  func() string
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.logger = l } }

func WithSettings(s Settings) Option { return func(e *Engine) { e.settings = s } }

// WithJournal records session milestones to sink from a background worker.
func WithJournal(sink Journal) Option {
	return func(e *Engine) { e.journal = &journalWorker{sink: sink} }
}

// WithCodeGenerator replaces the random room code source; used by tests.
func WithCodeGenerator(gen func() string) Option { return func(e *Engine) { e.newCode = gen } }

func NewEngine(rooms RoomRepository, quizzes QuizRepository, opts ...Option) *Engine {
	e := &Engine{
		rooms:    rooms,
		quizzes:  quizzes,
		clock:    clockwork.NewRealClock(),
		logger:   zerolog.Nop(),
		settings: DefaultSettings(),
		newCode:  randomRoomCode,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.journal != nil {
		e.journal.init(e.settings.JournalBuffer, e.logger)
	}
	return e
}

// randomRoomCode draws a 6-digit code without a leading zero.
func randomRoomCode() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}

func (e *Engine) settingsForRoom() roomSettings {
	return roomSettings{
		answerGrace:      e.settings.AnswerGrace,
		maxParticipants:  e.settings.MaxParticipants,
		subscriberBuffer: e.settings.SubscriberBuffer,
	}
}

func (e *Engine) record(entry domain.JournalEntry) {
	if e.journal != nil {
		e.journal.enqueue(entry)
	}
}

// CreateRoom freezes the quiz and opens a lobby for it under a fresh code.
func (e *Engine) CreateRoom(ctx context.Context, quizID string) (domain.RoomCredentials, error) {
	quiz, err := e.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.RoomCredentials{}, domain.ErrQuizNotFound
		}
		return domain.RoomCredentials{}, fmt.Errorf("load quiz %s: %w", quizID, err)
	}
	if len(quiz.Questions) == 0 {
		return domain.RoomCredentials{}, domain.ErrQuizEmpty
	}
	snapshot := domain.NewQuizSnapshot(quiz)

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		room := newRoom(e.newCode(), snapshot, e.clock, e.settingsForRoom(), e.record, e.logger)
		if !e.rooms.Insert(ctx, room) {
			continue
		}
		room.journal(domain.JournalRoomCreated, map[string]any{
			"quizName":  snapshot.Name(),
			"questions": snapshot.Len(),
		})
		e.logger.Info().Str("room", room.Code()).Str("quiz_id", quizID).Msg("room created")
		return room.credentials(), nil
	}
	return domain.RoomCredentials{}, errors.New("no free room code")
}

func (e *Engine) room(code string) (*Room, error) {
	room, ok := e.rooms.Get(code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// RoomInfo returns the public status of a room.
func (e *Engine) RoomInfo(_ context.Context, code string) (domain.RoomInfo, error) {
	room, err := e.room(code)
	if err != nil {
		return domain.RoomInfo{}, err
	}
	return room.Info(), nil
}

// ActiveRooms lists rooms that have not finished, oldest first.
func (e *Engine) ActiveRooms(_ context.Context) []domain.RoomInfo {
	rooms := e.rooms.List()
	slices.SortFunc(rooms, func(a, b *Room) int {
		return a.CreatedAt().Compare(b.CreatedAt())
	})
	out := make([]domain.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		if info := room.Info(); info.Phase != domain.PhaseFinished {
			out = append(out, info)
		}
	}
	return out
}

// QuizInUse reports whether an unfinished room plays quizID.
func (e *Engine) QuizInUse(quizID string) bool {
	for _, room := range e.rooms.List() {
		if room.QuizID() == quizID && room.Active() {
			return true
		}
	}
	return false
}

// Join adds a participant to a room.
func (e *Engine) Join(_ context.Context, code, name string) (domain.JoinResult, error) {
	room, err := e.room(code)
	if err != nil {
		return domain.JoinResult{}, err
	}
	return room.join(name)
}

// SubmitAnswer records a participant's answer for the running question.
func (e *Engine) SubmitAnswer(_ context.Context, code, participantID string, answerIndex int) (domain.AnswerReceipt, error) {
	room, err := e.room(code)
	if err != nil {
		return domain.AnswerReceipt{}, err
	}
	return room.submitAnswer(participantID, answerIndex)
}

// Act runs an admin command. The secret is checked on every call.
func (e *Engine) Act(_ context.Context, code, adminSecret string, action domain.AdminAction) error {
	room, err := e.room(code)
	if err != nil {
		return err
	}
	return room.act(adminSecret, action)
}

// AuthorizeAdmin reports whether secret is the admin secret of the room.
func (e *Engine) AuthorizeAdmin(code, secret string) bool {
	room, ok := e.rooms.Get(code)
	if !ok {
		return false
	}
	room.mu.RLock()
	defer room.mu.RUnlock()
	return !room.closed && room.authorizedLocked(secret)
}

// Subscribe opens a push channel on a room. A non-empty adminSecret asks for
// the admin view; otherwise participantID must be a member. The first frame
// is always a room-state snapshot.
func (e *Engine) Subscribe(_ context.Context, code, participantID, adminSecret string) (*Subscriber, error) {
	room, err := e.room(code)
	if err != nil {
		return nil, err
	}
	return room.subscribe(participantID, adminSecret)
}
