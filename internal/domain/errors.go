package domain

import "errors"

// Kind classifies a rejected call.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindPrecondition
	KindUnauthorized
	KindInvalid
)

// Error is a recoverable rejection carrying a short human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func newError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Invalid builds a validation rejection for caller-supplied data.
func Invalid(reason string) error {
	return newError(KindInvalid, reason)
}

var (
	// ErrRoomNotFound is returned for unknown or expired room codes.
	ErrRoomNotFound = newError(KindNotFound, "room not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = newError(KindNotFound, "quiz not found")
	// ErrParticipantNotFound is returned when a non-member acts in a room.
	ErrParticipantNotFound = newError(KindUnauthorized, "not a participant of this room")
	// ErrAdminUnauthorized is returned for a missing or wrong admin secret.
	ErrAdminUnauthorized = newError(KindUnauthorized, "admin secret rejected")

	ErrQuizEmpty          = newError(KindPrecondition, "quiz has no questions")
	ErrQuizInUse          = newError(KindPrecondition, "quiz is used by an active room")
	ErrAlreadyStarted     = newError(KindPrecondition, "quiz already started")
	ErrNoParticipants     = newError(KindPrecondition, "no participants")
	ErrNoActiveQuestion   = newError(KindPrecondition, "no active question")
	ErrNotRevealed        = newError(KindPrecondition, "leaderboard is only available after reveal")
	ErrCannotAdvance      = newError(KindPrecondition, "cannot advance in this phase")
	ErrGameFinished       = newError(KindPrecondition, "quiz already finished")
	ErrRoomFull           = newError(KindPrecondition, "room is full")
	ErrNameTaken          = newError(KindPrecondition, "name already taken")
	ErrAlreadyAnswered    = newError(KindPrecondition, "already answered this question")
	ErrAnswerWindowClosed = newError(KindPrecondition, "time for answering is over")
	ErrUnknownAction      = newError(KindInvalid, "unknown action")
)

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
