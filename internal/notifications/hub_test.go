package notifications

import (
	"context"
	"sync"
	"testing"

	"github.com/gofiber/websocket/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(10, nil)
	require.NoError(t, err)
	b, err := hub.Register(10, nil)
	require.NoError(t, err)
	other, err := hub.Register(11, nil)
	require.NoError(t, err)

	hub.Broadcast(10, []byte("hello"))

	assert.Equal(t, "hello", string(<-a.send))
	assert.Equal(t, "hello", string(<-b.send))
	assert.Empty(t, other.send)
	assert.Equal(t, 2, hub.Connections(10))
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(5, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(5, nil)
	assert.ErrorIs(t, err, ErrUserFull)

	_, err = hub.Register(6, nil)
	assert.NoError(t, err, "the limit is per user")
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)

	assert.Equal(t, 0, hub.Connections(3))
	_, open := <-c.send
	assert.False(t, open)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(8, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer; i++ {
		c.TrySend([]byte("x"))
	}
	assert.NotPanics(t, func() { c.TrySend([]byte("overflow")) })
	assert.Len(t, c.send, sendBuffer)

	hub.UnregisterClient(c)
	assert.NotPanics(t, func() { c.TrySend([]byte("after close")) })
}

func TestHub_ShutdownRefusesNewClients(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.Connections(1))

	_, err = hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrHubShutdown)
}

func TestHub_ShutdownQueuesGoingAwayFrame(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)
	c.TrySend([]byte("queued"))

	require.NoError(t, hub.Shutdown(context.Background()))

	assert.Equal(t, "queued", string(<-c.send), "pending events are still delivered")
	_, open := <-c.send
	assert.False(t, open)
	assert.Equal(t, websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"), c.finalFrame())

	hub.UnregisterClient(c)
	assert.NotPanics(t, func() { c.TrySend([]byte("late")) })
}

func TestHub_SendDuringShutdown(t *testing.T) {
	hub := NewHub()
	clients := make([]*Client, 0, 8)
	for i := 0; i < 8; i++ {
		c, err := hub.Register(uint(i%2+1), nil)
		require.NoError(t, err)
		clients = append(clients, c)
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.TrySend([]byte("x"))
			}
		}(c)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = hub.Shutdown(context.Background())
	}()

	assert.NotPanics(t, wg.Wait)
	assert.Equal(t, 0, hub.Connections(1))
}
