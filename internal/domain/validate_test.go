package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuiz() Quiz {
	return Quiz{
		Name: "  Capitals ",
		Questions: []Question{{
			Text:         "Capital of France?",
			Answers:      [AnswerCount]string{"Lyon", "Paris", "Nice", "Lille"},
			CorrectIndex: 1,
			Points:       2,
		}},
	}
}

func requireInvalid(t *testing.T, err error) {
	t.Helper()
	var derr *Error
	require.True(t, errors.As(err, &derr), "got %v", err)
	assert.Equal(t, KindInvalid, derr.Kind)
}

func TestQuizValidate(t *testing.T) {
	q := validQuiz()
	require.NoError(t, q.Validate())
	assert.Equal(t, "Capitals", q.Name)
	assert.Equal(t, DefaultTimeLimit, q.Questions[0].TimeLimit)

	cases := map[string]func(q *Quiz){
		"short name":     func(q *Quiz) { q.Name = "x" },
		"no questions":   func(q *Quiz) { q.Questions = nil },
		"empty answer":   func(q *Quiz) { q.Questions[0].Answers[2] = "" },
		"correct index":  func(q *Quiz) { q.Questions[0].CorrectIndex = 4 },
		"tier too high":  func(q *Quiz) { q.Questions[0].Points = 4 },
		"tier zero":      func(q *Quiz) { q.Questions[0].Points = 0 },
		"time too short": func(q *Quiz) { q.Questions[0].TimeLimit = 2 },
		"time too long":  func(q *Quiz) { q.Questions[0].TimeLimit = 121 },
		"short text":     func(q *Quiz) { q.Questions[0].Text = "?" },
		"long description": func(q *Quiz) {
			q.Description = strings.Repeat("d", 501)
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			q := validQuiz()
			mutate(&q)
			requireInvalid(t, q.Validate())
		})
	}
}

func TestParticipantName(t *testing.T) {
	name, err := ParticipantName("  Ana-Maria_2 ")
	require.NoError(t, err)
	assert.Equal(t, "Ana-Maria_2", name)

	name, err = ParticipantName("Zoë Ñúñez")
	require.NoError(t, err)
	assert.Equal(t, "Zoë Ñúñez", name)

	_, err = ParticipantName(strings.Repeat("é", MaxNameLength))
	require.NoError(t, err)

	for _, bad := range []string{"", "   ", "<script>", "a;b", strings.Repeat("a", MaxNameLength+1)} {
		_, err := ParticipantName(bad)
		requireInvalid(t, err)
	}
}
