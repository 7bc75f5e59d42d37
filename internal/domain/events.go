package domain

// EventType is the wire name of a push event.
type EventType string

const (
	EventRoomState         EventType = "room-state"
	EventParticipantJoined EventType = "participant-joined"
	EventQuestionStart     EventType = "question-start"
	EventAnswerCount       EventType = "answer-count"
	EventReveal            EventType = "reveal"
	EventLeaderboard       EventType = "leaderboard"
	EventGameFinished      EventType = "game-finished"
)

// Payload is the body of one push event. Role-dependent events have one
// payload type per role, so a subscriber never infers shape from fields.
type Payload interface {
	EventType() EventType
}

// Frame is the envelope written to push channels.
type Frame struct {
	Type      EventType `json:"type"`
	Data      Payload   `json:"data"`
	Timestamp int64     `json:"timestamp"`
}

type ParticipantJoined struct {
	Participant      PublicParticipant   `json:"participant"`
	Participants     []PublicParticipant `json:"participants"`
	ParticipantCount int                 `json:"participantCount"`
}

// QuestionStartAdmin is the admin view of a running question.
type QuestionStartAdmin struct {
	Index             int                 `json:"index"`
	TotalQuestions    int                 `json:"totalQuestions"`
	Text              string              `json:"text"`
	Answers           [AnswerCount]string `json:"answers"`
	TimeLimit         int                 `json:"timeLimit"`
	QuestionStartedAt int64               `json:"questionStartedAt"`
	QuestionEndsAt    int64               `json:"questionEndsAt"`
	AnsweredCount     int                 `json:"answeredCount"`
	TotalParticipants int                 `json:"totalParticipants"`
}

// QuestionStartParticipant carries timing only; question content stays on
// the admin screen until reveal.
type QuestionStartParticipant struct {
	Index             int   `json:"index"`
	TotalQuestions    int   `json:"totalQuestions"`
	TimeLimit         int   `json:"timeLimit"`
	QuestionStartedAt int64 `json:"questionStartedAt"`
	QuestionEndsAt    int64 `json:"questionEndsAt"`
}

type AnswerCountUpdate struct {
	AnsweredCount     int `json:"answeredCount"`
	TotalParticipants int `json:"totalParticipants"`
}

type RevealAdmin struct {
	CorrectIndex       int                 `json:"correctIndex"`
	QuestionText       string              `json:"questionText"`
	Answers            [AnswerCount]string `json:"answers"`
	Points             int                 `json:"points"`
	AnswerDistribution [AnswerCount]int    `json:"answerDistribution"`
	CorrectCount       int                 `json:"correctCount"`
	TotalAnswered      int                 `json:"totalAnswered"`
	TotalParticipants  int                 `json:"totalParticipants"`
}

type RevealParticipant struct {
	Correct      bool                `json:"correct"`
	CorrectIndex int                 `json:"correctIndex"`
	YourAnswer   *int                `json:"yourAnswer"`
	PointsEarned int                 `json:"pointsEarned"`
	TotalScore   int                 `json:"totalScore"`
	Answers      [AnswerCount]string `json:"answers"`
	QuestionText string              `json:"questionText"`
}

type LeaderboardUpdate struct {
	Leaderboard          []LeaderboardEntry `json:"leaderboard"`
	CurrentQuestionIndex int                `json:"currentQuestionIndex"`
	TotalQuestions       int                `json:"totalQuestions"`
	IsLast               bool               `json:"isLast"`
}

type GameFinished struct {
	Leaderboard    []LeaderboardEntry `json:"leaderboard"`
	QuizName       string             `json:"quizName"`
	TotalQuestions int                `json:"totalQuestions"`
}

// RoomState is the part of a room-state snapshot every role sees.
type RoomState struct {
	Code                 string              `json:"code"`
	Phase                Phase               `json:"phase"`
	QuizName             string              `json:"quizName"`
	Participants         []PublicParticipant `json:"participants"`
	ParticipantCount     int                 `json:"participantCount"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	TotalQuestions       int                 `json:"totalQuestions"`
}

type RoomStateAdmin struct {
	RoomState
	Question    *QuestionStartAdmin `json:"question,omitempty"`
	Reveal      *RevealAdmin        `json:"reveal,omitempty"`
	Leaderboard []LeaderboardEntry  `json:"leaderboard,omitempty"`
}

type RoomStateParticipant struct {
	RoomState
	Question    *QuestionStartParticipant `json:"question,omitempty"`
	HasAnswered bool                      `json:"hasAnswered"`
	Reveal      *RevealParticipant        `json:"reveal,omitempty"`
	Leaderboard []LeaderboardEntry        `json:"leaderboard,omitempty"`
}

func (ParticipantJoined) EventType() EventType        { return EventParticipantJoined }
func (QuestionStartAdmin) EventType() EventType       { return EventQuestionStart }
func (QuestionStartParticipant) EventType() EventType { return EventQuestionStart }
func (AnswerCountUpdate) EventType() EventType        { return EventAnswerCount }
func (RevealAdmin) EventType() EventType              { return EventReveal }
func (RevealParticipant) EventType() EventType        { return EventReveal }
func (LeaderboardUpdate) EventType() EventType        { return EventLeaderboard }
func (GameFinished) EventType() EventType             { return EventGameFinished }
func (RoomStateAdmin) EventType() EventType           { return EventRoomState }
func (RoomStateParticipant) EventType() EventType     { return EventRoomState }
