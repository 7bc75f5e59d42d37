package domain

import "time"

// JournalKind names a session milestone recorded for external consumers.
type JournalKind string

const (
	JournalRoomCreated       JournalKind = "room-created"
	JournalParticipantJoined JournalKind = "participant-joined"
	JournalQuestionStarted   JournalKind = "question-started"
	JournalQuestionClosed    JournalKind = "question-closed"
	JournalLeaderboard       JournalKind = "leaderboard"
	JournalGameFinished      JournalKind = "game-finished"
	JournalRoomExpired       JournalKind = "room-expired"
)

// JournalEntry is a room milestone. Data never carries the admin secret.
type JournalEntry struct {
	RoomCode string         `json:"roomCode"`
	QuizID   string         `json:"quizId"`
	Kind     JournalKind    `json:"kind"`
	Data     map[string]any `json:"data,omitempty"`
	At       time.Time      `json:"at"`
}
