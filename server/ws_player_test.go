package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tezbeat/core/player"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHub_ConcurrentBroadcast(t *testing.T) {
	hub := newEventHub()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		sub := hub.subscribe(testAddress, conn)
		defer hub.unsubscribe(testAddress, sub)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	const writers = 8
	const perWriter = 4

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				hub.broadcast(testAddress, player.Event{Type: "play"})
			}
		}()
	}
	wg.Wait()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < writers*perWriter; i++ {
		var ev player.Event
		require.NoError(t, conn.ReadJSON(&ev), "frame %d", i)
		assert.Equal(t, "play", ev.Type)
	}
}

func TestEventHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := newEventHub()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		sub := hub.subscribe(testAddress, conn)
		hub.unsubscribe(testAddress, sub)
		// double unsubscribe must not panic on a closed send channel
		hub.unsubscribe(testAddress, sub)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// the pump sends a close frame once its channel drains
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived) ||
		websocket.IsUnexpectedCloseError(err))

	// broadcasting to an empty hub is a no-op
	hub.broadcast(testAddress, player.Event{Type: "pause"})
}
