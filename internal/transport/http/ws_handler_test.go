package http

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-live-service/internal/domain"
)

type wsMessage struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func dial(t *testing.T, srv *testServer, query url.Values) *websocket.Conn {
	t.Helper()
	u := "ws" + srv.URL[len("http"):] + "/ws?" + query.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil reads messages until every wanted type was seen at least once.
func readUntil(t *testing.T, conn *websocket.Conn, want ...string) map[string]wsMessage {
	t.Helper()
	seen := map[string]wsMessage{}
	for i := 0; i < 10 && len(seen) < len(want); i++ {
		msg := readNext(t, conn)
		for _, w := range want {
			if msg.Type == w {
				seen[w] = msg
			}
		}
	}
	require.Len(t, seen, len(want), "saw %v", seen)
	return seen
}

func TestWebSocketGameFlow(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	creds, err := srv.engine.CreateRoom(ctx, "quiz-1")
	require.NoError(t, err)
	alice, err := srv.engine.Join(ctx, creds.Code, "Alice")
	require.NoError(t, err)

	admin := dial(t, srv, url.Values{"code": {creds.Code}, "adminSecret": {creds.AdminSecret}})
	player := dial(t, srv, url.Values{"code": {creds.Code}, "participantId": {alice.ParticipantID}})

	first := readNext(t, admin)
	assert.Equal(t, "room-state", first.Type)
	assert.Equal(t, "room-state", readNext(t, player).Type)

	require.NoError(t, player.WriteJSON(map[string]any{"type": "action", "payload": map[string]any{"action": "start"}}))
	rejected := readNext(t, player)
	assert.Equal(t, "error", rejected.Type)
	assert.Equal(t, domain.ErrAdminUnauthorized.Error(), rejected.Data["message"])

	require.NoError(t, admin.WriteJSON(map[string]any{"type": "action", "payload": map[string]any{"action": "start"}}))
	got := readUntil(t, admin, "action-result", "question-start")
	assert.Equal(t, true, got["action-result"].Data["success"])
	assert.Equal(t, "What is 2 + 2?", got["question-start"].Data["text"])

	question := readNext(t, player)
	assert.Equal(t, "question-start", question.Type)
	assert.NotContains(t, question.Data, "text")

	require.NoError(t, player.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"answerIndex": 1}}))
	got = readUntil(t, player, "answer-result", "reveal")
	assert.Equal(t, true, got["answer-result"].Data["accepted"])
	assert.Equal(t, true, got["reveal"].Data["correct"])
	assert.Equal(t, float64(150), got["reveal"].Data["pointsEarned"])

	require.NoError(t, player.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"answerIndex": 1}}))
	again := readNext(t, player)
	assert.Equal(t, "answer-result", again.Type)
	assert.Equal(t, false, again.Data["accepted"])
	assert.Equal(t, domain.ErrAnswerWindowClosed.Error(), again.Data["reason"])

	require.NoError(t, player.WriteJSON(map[string]any{"type": "dance"}))
	assert.Equal(t, "error", readNext(t, player).Type)
}

func TestWebSocketRejectsBeforeUpgrade(t *testing.T) {
	srv := newTestServer(t)
	creds, err := srv.engine.CreateRoom(context.Background(), "quiz-1")
	require.NoError(t, err)

	cases := map[string]int{
		url.Values{"code": {creds.Code}, "adminSecret": {"wrong"}}.Encode():   http.StatusForbidden,
		url.Values{"code": {creds.Code}, "participantId": {"ghost"}}.Encode(): http.StatusForbidden,
		url.Values{"code": {"999999"}, "participantId": {"ghost"}}.Encode():   http.StatusNotFound,
		url.Values{}.Encode(): http.StatusBadRequest,
	}
	for query, want := range cases {
		u := "ws" + srv.URL[len("http"):] + "/ws?" + query
		_, resp, err := websocket.DefaultDialer.Dial(u, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, want, resp.StatusCode, query)
	}
}

func TestWebSocketClosedWhenRoomCloses(t *testing.T) {
	srv := newTestServer(t)
	creds, err := srv.engine.CreateRoom(context.Background(), "quiz-1")
	require.NoError(t, err)

	admin := dial(t, srv, url.Values{"code": {creds.Code}, "adminSecret": {creds.AdminSecret}})
	assert.Equal(t, "room-state", readNext(t, admin).Type)

	srv.engine.Shutdown()
	_ = admin.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsMessage
	err = admin.ReadJSON(&msg)
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestWebSocketAnswerRequiresIndex(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	creds, err := srv.engine.CreateRoom(ctx, "quiz-1")
	require.NoError(t, err)
	alice, err := srv.engine.Join(ctx, creds.Code, "Alice")
	require.NoError(t, err)
	_, err = srv.engine.Join(ctx, creds.Code, "Bob")
	require.NoError(t, err)
	require.NoError(t, srv.engine.Act(ctx, creds.Code, creds.AdminSecret, domain.ActionStart))

	player := dial(t, srv, url.Values{"code": {creds.Code}, "participantId": {alice.ParticipantID}})
	assert.Equal(t, "room-state", readNext(t, player).Type)

	require.NoError(t, player.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{}}))
	missing := readNext(t, player)
	assert.Equal(t, "error", missing.Type)
	assert.Equal(t, "answerIndex is required", missing.Data["message"])

	require.NoError(t, player.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"answerIndex": 1}}))
	result := readNext(t, player)
	assert.Equal(t, "answer-result", result.Type)
	assert.Equal(t, true, result.Data["accepted"])
}

func TestWebSocketHonoursAllowedOrigins(t *testing.T) {
	srv := newTestServer(t, "https://quiz.example")
	creds, err := srv.engine.CreateRoom(context.Background(), "quiz-1")
	require.NoError(t, err)

	u := "ws" + srv.URL[len("http"):] + "/ws?" + url.Values{"code": {creds.Code}, "adminSecret": {creds.AdminSecret}}.Encode()

	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"https://quiz.example"}})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, "room-state", readNext(t, conn).Type)
}
