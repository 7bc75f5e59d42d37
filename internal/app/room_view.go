package app

import (
	"fmt"
	"slices"

	"quiz-live-service/internal/domain"
)

// The builders below read room state and assume the room lock is held.

func (r *Room) infoLocked() domain.RoomInfo {
	return domain.RoomInfo{
		Code:                 r.code,
		QuizName:             r.quiz.Name(),
		Phase:                r.phase,
		ParticipantCount:     len(r.participants),
		CurrentQuestionIndex: r.current,
		TotalQuestions:       r.quiz.Len(),
	}
}

func (r *Room) publicParticipantsLocked() []domain.PublicParticipant {
	out := make([]domain.PublicParticipant, 0, len(r.order))
	for _, id := range r.order {
		p := r.participants[id]
		out = append(out, domain.PublicParticipant{ID: p.ID, Name: p.Name})
	}
	return out
}

func (r *Room) standingsLocked() []Standing {
	out := make([]Standing, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, Standing{
			ParticipantID: id,
			Name:          r.participants[id].Name,
			Score:         r.scores[id],
		})
	}
	return out
}

// questionLocked returns the current question. A room past the lobby
// always has one; a missing question means the snapshot is corrupt.
func (r *Room) questionLocked() domain.Question {
	q, ok := r.quiz.Question(r.current)
	if !ok {
		panic(fmt.Sprintf("room %s: question %d missing from quiz snapshot", r.code, r.current))
	}
	return q
}

func (r *Room) questionAdminLocked() domain.QuestionStartAdmin {
	q := r.questionLocked()
	return domain.QuestionStartAdmin{
		Index:             r.current,
		TotalQuestions:    r.quiz.Len(),
		Text:              q.Text,
		Answers:           q.Answers,
		TimeLimit:         q.TimeLimit,
		QuestionStartedAt: r.questionStartedAt.UnixMilli(),
		QuestionEndsAt:    r.questionEndsAt.UnixMilli(),
		AnsweredCount:     len(r.answers[r.current]),
		TotalParticipants: len(r.participants),
	}
}

func (r *Room) questionParticipantLocked() domain.QuestionStartParticipant {
	q := r.questionLocked()
	return domain.QuestionStartParticipant{
		Index:             r.current,
		TotalQuestions:    r.quiz.Len(),
		TimeLimit:         q.TimeLimit,
		QuestionStartedAt: r.questionStartedAt.UnixMilli(),
		QuestionEndsAt:    r.questionEndsAt.UnixMilli(),
	}
}

func (r *Room) revealAdminLocked() domain.RevealAdmin {
	q := r.questionLocked()
	given := r.answers[r.current]

	var distribution [domain.AnswerCount]int
	correct := 0
	for _, a := range given {
		if a.AnswerIndex >= 0 && a.AnswerIndex < domain.AnswerCount {
			distribution[a.AnswerIndex]++
		}
		if a.AnswerIndex == q.CorrectIndex {
			correct++
		}
	}
	return domain.RevealAdmin{
		CorrectIndex:       q.CorrectIndex,
		QuestionText:       q.Text,
		Answers:            q.Answers,
		Points:             q.Points,
		AnswerDistribution: distribution,
		CorrectCount:       correct,
		TotalAnswered:      len(given),
		TotalParticipants:  len(r.participants),
	}
}

func (r *Room) revealParticipantLocked(participantID string) domain.RevealParticipant {
	q := r.questionLocked()
	out := domain.RevealParticipant{
		CorrectIndex: q.CorrectIndex,
		TotalScore:   r.scores[participantID],
		Answers:      q.Answers,
		QuestionText: q.Text,
	}
	if a, ok := r.answers[r.current][participantID]; ok {
		chosen := a.AnswerIndex
		out.YourAnswer = &chosen
		out.Correct = chosen == q.CorrectIndex
		out.PointsEarned = Score(q, a.AnswerIndex, a.LatencyMs)
	}
	return out
}

func (r *Room) hasAnsweredLocked(participantID string) bool {
	_, ok := r.answers[r.current][participantID]
	return ok
}

// roomStateLocked rebuilds the current phase's view for a subscriber that
// connects mid-session.
func (r *Room) roomStateLocked(role Role) domain.Payload {
	base := domain.RoomState{
		Code:                 r.code,
		Phase:                r.phase,
		QuizName:             r.quiz.Name(),
		Participants:         r.publicParticipantsLocked(),
		ParticipantCount:     len(r.participants),
		CurrentQuestionIndex: r.current,
		TotalQuestions:       r.quiz.Len(),
	}

	var board []domain.LeaderboardEntry
	if r.phase == domain.PhaseLeaderboard || r.phase == domain.PhaseFinished {
		board = slices.Clone(r.lastLeaderboard)
	}

	if role.IsAdmin() {
		state := domain.RoomStateAdmin{RoomState: base, Leaderboard: board}
		switch r.phase {
		case domain.PhaseQuestion:
			q := r.questionAdminLocked()
			state.Question = &q
		case domain.PhaseReveal:
			rev := r.revealAdminLocked()
			state.Reveal = &rev
		}
		return state
	}

	state := domain.RoomStateParticipant{RoomState: base, Leaderboard: board}
	switch r.phase {
	case domain.PhaseQuestion:
		q := r.questionParticipantLocked()
		state.Question = &q
		state.HasAnswered = r.hasAnsweredLocked(role.ParticipantID)
	case domain.PhaseReveal:
		rev := r.revealParticipantLocked(role.ParticipantID)
		state.Reveal = &rev
		state.HasAnswered = rev.YourAnswer != nil
	}
	return state
}
