package app

import (
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"quiz-live-service/internal/domain"
)

// roomSettings are the engine limits a room enforces.
type roomSettings struct {
	answerGrace      time.Duration
	maxParticipants  int
	subscriberBuffer int
}

// Room is one live quiz session. Every mutation runs under mu, so commands
// for the same room never interleave; reads take the read lock and see a
// consistent state.
type Room struct {
	code        string
	adminSecret string
	quiz        domain.QuizSnapshot
	createdAt   time.Time

	clock    Clock
	settings roomSettings
	hub      *hub
	record   func(domain.JournalEntry)
	logger   zerolog.Logger

	mu                sync.RWMutex
	phase             domain.Phase
	current           int
	participants      map[string]*domain.Participant
	order             []string
	answers           map[int]map[string]domain.Answer
	scores            map[string]int
	questionStartedAt time.Time
	questionEndsAt    time.Time
	timer             clockwork.Timer
	timerSeq          uint64
	previousRanks     map[string]int
	lastLeaderboard   []domain.LeaderboardEntry
	closed            bool
}

func newRoom(code string, quiz domain.QuizSnapshot, clock Clock, settings roomSettings, record func(domain.JournalEntry), logger zerolog.Logger) *Room {
	if record == nil {
		record = func(domain.JournalEntry) {}
	}
	logger = logger.With().Str("room", code).Logger()
	return &Room{
		code:          code,
		adminSecret:   uuid.NewString(),
		quiz:          quiz,
		createdAt:     clock.Now(),
		clock:         clock,
		settings:      settings,
		hub:           newHub(code, settings.subscriberBuffer, clock.Now, logger),
		record:        record,
		logger:        logger,
		phase:         domain.PhaseLobby,
		current:       -1,
		participants:  make(map[string]*domain.Participant),
		answers:       make(map[int]map[string]domain.Answer),
		scores:        make(map[string]int),
		previousRanks: make(map[string]int),
	}
}

func (r *Room) Code() string         { return r.code }
func (r *Room) QuizID() string       { return r.quiz.ID() }
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// Info returns the room's public status.
func (r *Room) Info() domain.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.infoLocked()
}

// Active reports whether the room is live and not finished.
func (r *Room) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.closed && r.phase != domain.PhaseFinished
}

func (r *Room) credentials() domain.RoomCredentials {
	return domain.RoomCredentials{Code: r.code, AdminSecret: r.adminSecret}
}

func (r *Room) authorizedLocked(secret string) bool {
	return secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(r.adminSecret)) == 1
}

func (r *Room) journal(kind domain.JournalKind, data map[string]any) {
	r.record(domain.JournalEntry{
		RoomCode: r.code,
		QuizID:   r.quiz.ID(),
		Kind:     kind,
		Data:     data,
		At:       r.clock.Now(),
	})
}

func (r *Room) join(name string) (domain.JoinResult, error) {
	name, err := domain.ParticipantName(name)
	if err != nil {
		return domain.JoinResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.JoinResult{}, domain.ErrRoomNotFound
	}
	if r.phase == domain.PhaseFinished {
		return domain.JoinResult{}, domain.ErrGameFinished
	}
	if len(r.participants) >= r.settings.maxParticipants {
		return domain.JoinResult{}, domain.ErrRoomFull
	}
	for _, p := range r.participants {
		if strings.EqualFold(p.Name, name) {
			return domain.JoinResult{}, domain.ErrNameTaken
		}
	}

	participant := &domain.Participant{
		ID:       uuid.NewString(),
		Name:     name,
		JoinedAt: r.clock.Now(),
	}
	r.participants[participant.ID] = participant
	r.order = append(r.order, participant.ID)
	r.scores[participant.ID] = 0

	public := r.publicParticipantsLocked()
	r.hub.publish(toEveryone(domain.ParticipantJoined{
		Participant:      domain.PublicParticipant{ID: participant.ID, Name: participant.Name},
		Participants:     public,
		ParticipantCount: len(r.participants),
	}))
	r.journal(domain.JournalParticipantJoined, map[string]any{
		"participantId": participant.ID,
		"name":          participant.Name,
	})

	return domain.JoinResult{
		ParticipantID:   participant.ID,
		ParticipantName: participant.Name,
		RoomPhase:       r.phase,
		Participants:    public,
		QuizName:        r.quiz.Name(),
	}, nil
}

func (r *Room) submitAnswer(participantID string, answerIndex int) (domain.AnswerReceipt, error) {
	if answerIndex < 0 || answerIndex >= domain.AnswerCount {
		return domain.AnswerReceipt{}, domain.Invalid("answer index must be 0-3")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.AnswerReceipt{}, domain.ErrRoomNotFound
	}
	if _, ok := r.participants[participantID]; !ok {
		return domain.AnswerReceipt{}, domain.ErrParticipantNotFound
	}
	switch r.phase {
	case domain.PhaseQuestion:
	case domain.PhaseReveal:
		return domain.AnswerReceipt{}, domain.ErrAnswerWindowClosed
	default:
		return domain.AnswerReceipt{}, domain.ErrNoActiveQuestion
	}

	qi := r.current
	given := r.answers[qi]
	if _, dup := given[participantID]; dup {
		return domain.AnswerReceipt{}, domain.ErrAlreadyAnswered
	}
	now := r.clock.Now()
	if now.After(r.questionEndsAt.Add(r.settings.answerGrace)) {
		return domain.AnswerReceipt{}, domain.ErrAnswerWindowClosed
	}

	latency := now.Sub(r.questionStartedAt).Milliseconds()
	if latency < 0 {
		latency = 0
	}
	given[participantID] = domain.Answer{
		ParticipantID: participantID,
		QuestionIndex: qi,
		AnswerIndex:   answerIndex,
		AnsweredAt:    now,
		LatencyMs:     latency,
	}
	r.scores[participantID] += Score(r.questionLocked(), answerIndex, latency)

	r.hub.publish(toAdmins(domain.AnswerCountUpdate{
		AnsweredCount:     len(given),
		TotalParticipants: len(r.participants),
	}))

	if len(given) >= len(r.participants) {
		r.logger.Debug().Int("question", qi).Msg("all participants answered, closing question early")
		r.endQuestionLocked()
	}
	return domain.AnswerReceipt{Accepted: true}, nil
}

// act runs an admin command after checking the secret, under one lock.
func (r *Room) act(secret string, action domain.AdminAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.ErrRoomNotFound
	}
	if !r.authorizedLocked(secret) {
		return domain.ErrAdminUnauthorized
	}

	var err error
	switch action {
	case domain.ActionStart:
		err = r.startLocked()
	case domain.ActionNext:
		err = r.nextLocked()
	case domain.ActionSkip:
		err = r.skipLocked()
	case domain.ActionLeaderboard:
		err = r.leaderboardLocked()
	default:
		err = domain.ErrUnknownAction
	}
	if err != nil {
		r.logger.Debug().Str("action", string(action)).Str("phase", string(r.phase)).Err(err).Msg("admin action rejected")
	}
	return err
}

func (r *Room) startLocked() error {
	if r.phase != domain.PhaseLobby {
		return domain.ErrAlreadyStarted
	}
	if len(r.participants) == 0 {
		return domain.ErrNoParticipants
	}
	r.advanceLocked()
	return nil
}

func (r *Room) skipLocked() error {
	if r.phase != domain.PhaseQuestion {
		return domain.ErrNoActiveQuestion
	}
	r.endQuestionLocked()
	return nil
}

func (r *Room) leaderboardLocked() error {
	if r.phase != domain.PhaseReveal {
		return domain.ErrNotRevealed
	}
	r.phase = domain.PhaseLeaderboard

	board := BuildLeaderboard(r.standingsLocked(), r.previousRanks)
	r.previousRanks = Ranks(board)
	r.lastLeaderboard = board

	r.hub.publish(toEveryone(domain.LeaderboardUpdate{
		Leaderboard:          board,
		CurrentQuestionIndex: r.current,
		TotalQuestions:       r.quiz.Len(),
		IsLast:               r.current+1 >= r.quiz.Len(),
	}))
	r.journal(domain.JournalLeaderboard, map[string]any{
		"question":    r.current,
		"leaderboard": board,
	})
	return nil
}

func (r *Room) nextLocked() error {
	switch r.phase {
	case domain.PhaseReveal, domain.PhaseLeaderboard:
	case domain.PhaseFinished:
		return domain.ErrGameFinished
	default:
		return domain.ErrCannotAdvance
	}
	if r.current+1 >= r.quiz.Len() {
		r.finishLocked()
		return nil
	}
	r.advanceLocked()
	return nil
}

// advanceLocked moves to the next question and arms its timer. The timer
// runs for the time limit plus the answer grace, so answers that arrive
// within the grace window are still scored.
func (r *Room) advanceLocked() {
	r.current++
	q, ok := r.quiz.Question(r.current)
	if !ok {
		r.finishLocked()
		return
	}

	now := r.clock.Now()
	limit := time.Duration(q.TimeLimit) * time.Second
	r.phase = domain.PhaseQuestion
	r.questionStartedAt = now
	r.questionEndsAt = now.Add(limit)
	r.answers[r.current] = make(map[string]domain.Answer)
	r.armTimerLocked(limit + r.settings.answerGrace)

	r.hub.publish(splitByRole(r.questionAdminLocked(), func(string) domain.Payload {
		return r.questionParticipantLocked()
	}))
	r.journal(domain.JournalQuestionStarted, map[string]any{
		"question":     r.current,
		"participants": len(r.participants),
		"endsAt":       r.questionEndsAt.UnixMilli(),
	})
	r.logger.Info().Int("question", r.current).Int("time_limit", q.TimeLimit).Msg("question started")
}

func (r *Room) endQuestionLocked() {
	if r.phase != domain.PhaseQuestion {
		return
	}
	r.cancelTimerLocked()
	r.phase = domain.PhaseReveal

	reveal := r.revealAdminLocked()
	r.hub.publish(splitByRole(reveal, func(participantID string) domain.Payload {
		return r.revealParticipantLocked(participantID)
	}))
	r.journal(domain.JournalQuestionClosed, map[string]any{
		"question":     r.current,
		"distribution": reveal.AnswerDistribution,
		"correct":      reveal.CorrectCount,
		"answered":     reveal.TotalAnswered,
	})
	r.logger.Info().Int("question", r.current).Int("answered", reveal.TotalAnswered).Msg("question closed")
}

func (r *Room) finishLocked() {
	r.cancelTimerLocked()
	r.phase = domain.PhaseFinished

	board := BuildLeaderboard(r.standingsLocked(), r.previousRanks)
	r.lastLeaderboard = board

	r.hub.publish(toEveryone(domain.GameFinished{
		Leaderboard:    board,
		QuizName:       r.quiz.Name(),
		TotalQuestions: r.quiz.Len(),
	}))
	r.journal(domain.JournalGameFinished, map[string]any{"leaderboard": board})
	r.logger.Info().Int("participants", len(r.participants)).Msg("game finished")
}

func (r *Room) subscribe(participantID, adminSecret string) (*Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, domain.ErrRoomNotFound
	}
	var role Role
	switch {
	case adminSecret != "":
		if !r.authorizedLocked(adminSecret) {
			return nil, domain.ErrAdminUnauthorized
		}
		role = AdminRole()
	case participantID != "":
		if _, ok := r.participants[participantID]; !ok {
			return nil, domain.ErrParticipantNotFound
		}
		role = ParticipantRole(participantID)
	default:
		return nil, domain.Invalid("participant id or admin secret required")
	}

	s, ok := r.hub.attach(role)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	// Broadcasts need the write lock, so the snapshot is queued before any
	// later incremental event.
	r.hub.sendTo(s, r.roomStateLocked(role))
	return s, nil
}

// expire stops the room for good: the timer is cancelled, subscribers are
// closed and further commands see ErrRoomNotFound.
func (r *Room) expire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.cancelTimerLocked()
	r.closed = true
	r.hub.closeAll()
}
