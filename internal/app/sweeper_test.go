package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-live-service/internal/app"
	"quiz-live-service/internal/domain"
)

func TestSweepRemovesExpiredRooms(t *testing.T) {
	f := newFixture(t)
	old := f.createRoom()
	alice := f.join(old.Code, "Alice")
	f.act(old, domain.ActionStart)
	sub := f.subscribeParticipant(old.Code, alice)

	f.clock.Advance(90 * time.Minute)
	fresh := f.createRoom()
	assert.Zero(t, f.engine.Sweep())

	f.clock.Advance(31 * time.Minute)
	assert.Equal(t, 1, f.engine.Sweep())

	expectClosed(t, sub)
	_, err := f.engine.RoomInfo(context.Background(), old.Code)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.ErrorIs(t, f.answer(old.Code, alice, 1), domain.ErrRoomNotFound)
	assert.ErrorIs(t, f.engine.Act(context.Background(), old.Code, old.AdminSecret, domain.ActionSkip), domain.ErrRoomNotFound)

	_, err = f.engine.RoomInfo(context.Background(), fresh.Code)
	assert.NoError(t, err)
}

func TestRunSweepsAndShutsDown(t *testing.T) {
	settings := app.DefaultSettings()
	settings.Retention = time.Hour
	settings.SweepInterval = 10 * time.Minute
	f := newFixture(t, app.WithSettings(settings))
	creds := f.createRoom()
	admin := f.subscribeAdmin(creds)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.engine.Run(ctx) }()

	require.Eventually(t, func() bool {
		f.clock.Advance(settings.SweepInterval)
		return len(f.engine.ActiveRooms(context.Background())) == 0
	}, 2*time.Second, 10*time.Millisecond)
	expectClosed(t, admin)

	live := f.createRoom()
	liveAdmin := f.subscribeAdmin(live)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("engine did not stop")
	}
	expectClosed(t, liveAdmin)
	_, err := f.engine.RoomInfo(context.Background(), live.Code)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}
