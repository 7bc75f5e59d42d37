package domain

import "time"

// Phase is the stage a room is in.
type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseQuestion    Phase = "question"
	PhaseReveal      Phase = "reveal"
	PhaseLeaderboard Phase = "leaderboard"
	PhaseFinished    Phase = "finished"
)

// AnswerCount is the number of options every question carries.
const AnswerCount = 4

// MaxNameLength caps participant display names, in characters.
const MaxNameLength = 30

// AdminAction names a phase-advancing command issued by the room admin.
type AdminAction string

const (
	ActionStart       AdminAction = "start"
	ActionNext        AdminAction = "next"
	ActionSkip        AdminAction = "skip"
	ActionLeaderboard AdminAction = "leaderboard"
)

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID           string              `json:"id"`
	Text         string              `json:"text"`
	Answers      [AnswerCount]string `json:"answers"`
	CorrectIndex int                 `json:"correctIndex"`
	Points       int                 `json:"points"`    // tier 1..3
	TimeLimit    int                 `json:"timeLimit"` // seconds
}

// Quiz is an editable collection of questions.
type Quiz struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   int64      `json:"createdAt"`
	UpdatedAt   int64      `json:"updatedAt"`
}

// QuizSummary is the list view of a quiz.
type QuizSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	QuestionCount int    `json:"questionCount"`
	CreatedAt     int64  `json:"createdAt"`
	UpdatedAt     int64  `json:"updatedAt"`
}

// Summary returns the list view of q.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:            q.ID,
		Name:          q.Name,
		Description:   q.Description,
		QuestionCount: len(q.Questions),
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

// QuizSnapshot is the frozen copy of a quiz a room plays. It shares no
// memory with the Quiz it was built from.
type QuizSnapshot struct {
	id        string
	name      string
	questions []Question
}

// NewQuizSnapshot copies q into an immutable snapshot.
func NewQuizSnapshot(q Quiz) QuizSnapshot {
	questions := make([]Question, len(q.Questions))
	copy(questions, q.Questions)
	return QuizSnapshot{id: q.ID, name: q.Name, questions: questions}
}

func (s QuizSnapshot) ID() string   { return s.id }
func (s QuizSnapshot) Name() string { return s.name }
func (s QuizSnapshot) Len() int     { return len(s.questions) }

// Question returns the question at index i.
func (s QuizSnapshot) Question(i int) (Question, bool) {
	if i < 0 || i >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[i], true
}

// Participant is a member of a room.
type Participant struct {
	ID       string
	Name     string
	JoinedAt time.Time
}

// Answer is a participant's recorded choice for one question.
type Answer struct {
	ParticipantID string
	QuestionIndex int
	AnswerIndex   int
	AnsweredAt    time.Time
	LatencyMs     int64
}

// PublicParticipant is the participant view shared with every subscriber.
type PublicParticipant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	Rank          int    `json:"rank"`
	RankChange    int    `json:"rankChange"`
}

// RoomCredentials is returned once, to whoever created the room.
type RoomCredentials struct {
	Code        string `json:"code"`
	AdminSecret string `json:"adminSecret"`
}

// JoinResult is returned to a participant after a successful join.
type JoinResult struct {
	ParticipantID   string              `json:"participantId"`
	ParticipantName string              `json:"participantName"`
	RoomPhase       Phase               `json:"roomPhase"`
	Participants    []PublicParticipant `json:"participants"`
	QuizName        string              `json:"quizName"`
}

// AnswerReceipt acknowledges an accepted answer.
type AnswerReceipt struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// RoomInfo is the public status of a room.
type RoomInfo struct {
	Code                 string `json:"code"`
	QuizName             string `json:"quizName"`
	Phase                Phase  `json:"phase"`
	ParticipantCount     int    `json:"participantCount"`
	CurrentQuestionIndex int    `json:"currentQuestionIndex"`
	TotalQuestions       int    `json:"totalQuestions"`
}
