package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen serves the env's app on a loopback port and returns its address.
func (e *testEnv) listen() string {
	e.t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(e.t, err)
	go func() { _ = e.app.Listener(ln) }()
	e.t.Cleanup(func() { _ = e.app.Shutdown() })
	return ln.Addr().String()
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev.Type, ev.Payload
}

func TestWebsocketNotifications(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := newTestEnv(t, rdb)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, e.srv.hub.StartWiring(ctx, e.srv.notifier))

	e.createProfile(1, "alice", "public")
	e.createProfile(2, "bob", "public")
	postID := e.createPost(1, "Latte")
	addr := e.listen()

	var ticket struct {
		Ticket string `json:"ticket"`
	}
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/ws/ticket", 1, nil, &ticket))
	require.NotEmpty(t, ticket.Ticket)

	url := fmt.Sprintf("ws://%s/api/ws?ticket=%s", addr, ticket.Ticket)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	typ, payload := readEvent(t, conn)
	assert.Equal(t, "connected", typ)
	assert.EqualValues(t, 1, payload["user_id"])

	require.Equal(t, http.StatusOK, e.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), 2, nil, nil))
	typ, payload = readEvent(t, conn)
	assert.Equal(t, "notification", typ)
	assert.Equal(t, "like", payload["type"])
	assert.EqualValues(t, 2, payload["actor_id"])

	// Tickets are single use.
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A ticket does not authenticate ordinary API routes.
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/api/ws/ticket", 1, nil, &ticket))
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/notifications?ticket="+ticket.Ticket, 0, nil, nil))
}

func TestWebsocketShutdownSendsGoingAway(t *testing.T) {
	e := newTestEnv(t, nil)
	addr := e.listen()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+e.token(1))
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/api/ws", addr), header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	typ, _ := readEvent(t, conn)
	require.Equal(t, "connected", typ)

	require.NoError(t, e.srv.hub.Shutdown(context.Background()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	e := newTestEnv(t, nil)
	assert.Equal(t, http.StatusUpgradeRequired, e.do(http.MethodGet, "/api/ws", 1, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/ws", 0, nil, nil))
}
