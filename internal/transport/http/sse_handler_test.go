package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-live-service/internal/domain"
)

type sseEvent struct {
	name    string
	data    string
	comment string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		switch {
		case line == "":
			return ev
		case strings.HasPrefix(line, ":"):
			ev.comment = strings.TrimSpace(strings.TrimPrefix(line, ":"))
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestEventStream(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	creds, err := srv.engine.CreateRoom(ctx, "quiz-1")
	require.NoError(t, err)
	alice, err := srv.engine.Join(ctx, creds.Code, "Alice")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/api/rooms/"+creds.Code+"/events?participantId="+alice.ParticipantID, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache, no-transform", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no", resp.Header.Get("X-Accel-Buffering"))

	reader := bufio.NewReader(resp.Body)
	first := readEvent(t, reader)
	assert.Equal(t, "room-state", first.name)
	var frame struct {
		Type string                      `json:"type"`
		Data domain.RoomStateParticipant `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(first.data), &frame))
	assert.Equal(t, "room-state", frame.Type)
	assert.Equal(t, creds.Code, frame.Data.Code)
	assert.Equal(t, domain.PhaseLobby, frame.Data.Phase)

	_, err = srv.engine.Join(ctx, creds.Code, "Bob")
	require.NoError(t, err)
	assert.Equal(t, "participant-joined", readEvent(t, reader).name)

	require.NoError(t, srv.httpClock.BlockUntilContext(ctx, 1))
	srv.httpClock.Advance(15 * time.Second)
	ping := readEvent(t, reader)
	assert.True(t, strings.HasPrefix(ping.comment, "ping"), "got %+v", ping)
}

func TestEventStreamRejections(t *testing.T) {
	srv := newTestServer(t)
	creds, err := srv.engine.CreateRoom(context.Background(), "quiz-1")
	require.NoError(t, err)

	cases := map[string]int{
		"/api/rooms/" + creds.Code + "/events?participantId=ghost": http.StatusForbidden,
		"/api/rooms/" + creds.Code + "/events?adminSecret=wrong":   http.StatusForbidden,
		"/api/rooms/" + creds.Code + "/events":                     http.StatusBadRequest,
		"/api/rooms/999999/events?participantId=ghost":             http.StatusNotFound,
	}
	for path, want := range cases {
		resp, err := srv.Client().Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestEventStreamEndsWhenRoomCloses(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	creds, err := srv.engine.CreateRoom(ctx, "quiz-1")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/api/rooms/"+creds.Code+"/events?adminSecret="+creds.AdminSecret, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "room-state", readEvent(t, reader).name)

	srv.engine.Shutdown()
	_, err = reader.ReadString('\n')
	assert.Error(t, err)
}
