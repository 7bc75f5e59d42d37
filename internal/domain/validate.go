package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinTimeLimit     = 5
	MaxTimeLimit     = 120
	DefaultTimeLimit = 30
	MaxQuestions     = 100
)

// Validate checks a quiz definition before it is stored. A zero time limit
// is replaced by DefaultTimeLimit.
func (q *Quiz) Validate() error {
	name := strings.TrimSpace(q.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return Invalid("quiz name must have 2-100 characters")
	}
	q.Name = name
	if utf8.RuneCountInString(q.Description) > 500 {
		return Invalid("quiz description may have at most 500 characters")
	}
	if len(q.Questions) == 0 {
		return Invalid("quiz needs at least one question")
	}
	if len(q.Questions) > MaxQuestions {
		return Invalid(fmt.Sprintf("quiz may have at most %d questions", MaxQuestions))
	}
	for i := range q.Questions {
		if err := q.Questions[i].validate(); err != nil {
			return Invalid(fmt.Sprintf("question %d: %s", i+1, err.Error()))
		}
	}
	return nil
}

func (q *Question) validate() error {
	if n := utf8.RuneCountInString(q.Text); n < 3 || n > 500 {
		return Invalid("text must have 3-500 characters")
	}
	for i, a := range q.Answers {
		if n := utf8.RuneCountInString(a); n < 1 || n > 200 {
			return Invalid(fmt.Sprintf("answer %d must have 1-200 characters", i+1))
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= AnswerCount {
		return Invalid("correct index must be 0-3")
	}
	if q.Points < 1 || q.Points > 3 {
		return Invalid("points must be 1, 2 or 3")
	}
	if q.TimeLimit == 0 {
		q.TimeLimit = DefaultTimeLimit
	}
	if q.TimeLimit < MinTimeLimit || q.TimeLimit > MaxTimeLimit {
		return Invalid(fmt.Sprintf("time limit must be %d-%d seconds", MinTimeLimit, MaxTimeLimit))
	}
	return nil
}

// ParticipantName trims raw and checks it is a usable display name:
// 1..MaxNameLength letters, digits, spaces, '_' or '-'.
func ParticipantName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", Invalid("name must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", Invalid(fmt.Sprintf("name may have at most %d characters", MaxNameLength))
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' && r != '_' && r != '-' {
			return "", Invalid("name may contain only letters, digits, spaces, '_' and '-'")
		}
	}
	return name, nil
}
