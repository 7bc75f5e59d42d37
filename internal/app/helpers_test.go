package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"quiz-live-service/internal/app"
	"quiz-live-service/internal/domain"
	"quiz-live-service/internal/infra/memory"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testQuiz has a 30s tier-1 question followed by a 10s tier-3 question.
func testQuiz() domain.Quiz {
	return domain.Quiz{
		ID:   "quiz-1",
		Name: "Capitals",
		Questions: []domain.Question{
			{
				ID:           "q1",
				Text:         "Capital of France?",
				Answers:      [4]string{"Lyon", "Paris", "Nice", "Lille"},
				CorrectIndex: 1,
				Points:       1,
				TimeLimit:    30,
			},
			{
				ID:           "q2",
				Text:         "Capital of Japan?",
				Answers:      [4]string{"Osaka", "Kyoto", "Nagoya", "Tokyo"},
				CorrectIndex: 3,
				Points:       3,
				TimeLimit:    10,
			},
		},
	}
}

type fixture struct {
	t       *testing.T
	clock   *clockwork.FakeClock
	store   *memory.QuizStore
	quizzes *memory.QuizRepository
	engine  *app.Engine
}

func newFixture(t *testing.T, opts ...app.Option) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(epoch)
	store := memory.NewQuizStore(testQuiz())
	quizzes := memory.NewQuizRepository(store, time.Minute)
	opts = append([]app.Option{app.WithClock(clock)}, opts...)
	return &fixture{
		t:       t,
		clock:   clock,
		store:   store,
		quizzes: quizzes,
		engine:  app.NewEngine(memory.NewRoomStore(), quizzes, opts...),
	}
}

func (f *fixture) createRoom() domain.RoomCredentials {
	f.t.Helper()
	creds, err := f.engine.CreateRoom(context.Background(), "quiz-1")
	require.NoError(f.t, err)
	return creds
}

func (f *fixture) join(code, name string) string {
	f.t.Helper()
	res, err := f.engine.Join(context.Background(), code, name)
	require.NoError(f.t, err)
	return res.ParticipantID
}

func (f *fixture) act(creds domain.RoomCredentials, action domain.AdminAction) {
	f.t.Helper()
	require.NoError(f.t, f.engine.Act(context.Background(), creds.Code, creds.AdminSecret, action))
}

func (f *fixture) answer(code, participantID string, index int) error {
	_, err := f.engine.SubmitAnswer(context.Background(), code, participantID, index)
	return err
}

func (f *fixture) phase(code string) domain.Phase {
	f.t.Helper()
	info, err := f.engine.RoomInfo(context.Background(), code)
	require.NoError(f.t, err)
	return info.Phase
}

func (f *fixture) subscribeAdmin(creds domain.RoomCredentials) *app.Subscriber {
	f.t.Helper()
	sub, err := f.engine.Subscribe(context.Background(), creds.Code, "", creds.AdminSecret)
	require.NoError(f.t, err)
	f.t.Cleanup(sub.Close)
	return sub
}

func (f *fixture) subscribeParticipant(code, participantID string) *app.Subscriber {
	f.t.Helper()
	sub, err := f.engine.Subscribe(context.Background(), code, participantID, "")
	require.NoError(f.t, err)
	f.t.Cleanup(sub.Close)
	return sub
}

func nextFrame(t *testing.T, sub *app.Subscriber) domain.Frame {
	t.Helper()
	select {
	case frame, ok := <-sub.Frames():
		require.True(t, ok, "subscriber closed")
		return frame
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame received")
	}
	return domain.Frame{}
}

func expectNoFrame(t *testing.T, sub *app.Subscriber) {
	t.Helper()
	select {
	case frame, ok := <-sub.Frames():
		if ok {
			t.Fatalf("unexpected %s frame", frame.Type)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func expectClosed(t *testing.T, sub *app.Subscriber) {
	t.Helper()
	for {
		select {
		case _, ok := <-sub.Frames():
			if !ok {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("subscriber still open")
		}
	}
}
