package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"tezbeat/core/player"
	"tezbeat/logger"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsWriteWait  = 10 * time.Second
	wsSendBuffer = 32
)

// wsSubscriber owns all writes to its connection. gorilla/websocket allows
// at most one concurrent writer, so every outbound frame goes through the
// send channel and the single writePump goroutine.
type wsSubscriber struct {
	conn *websocket.Conn
	send chan []byte
}

func (s *wsSubscriber) writePump() {
	defer s.conn.Close()
	for msg := range s.send {
		s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	s.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// enqueue hands a payload to the write pump without blocking the caller.
func (s *wsSubscriber) enqueue(payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// eventHub fans player events out to every websocket subscribed to a wallet
// address.
type eventHub struct {
	mu   sync.Mutex
	subs map[string]map[*wsSubscriber]bool
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[string]map[*wsSubscriber]bool)}
}

func (hub *eventHub) subscribe(address string, conn *websocket.Conn) *wsSubscriber {
	sub := &wsSubscriber{conn: conn, send: make(chan []byte, wsSendBuffer)}
	go sub.writePump()

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.subs[address] == nil {
		hub.subs[address] = make(map[*wsSubscriber]bool)
	}
	hub.subs[address][sub] = true
	return sub
}

func (hub *eventHub) unsubscribe(address string, sub *wsSubscriber) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.subs[address][sub] {
		delete(hub.subs[address], sub)
		close(sub.send)
	}
	if len(hub.subs[address]) == 0 {
		delete(hub.subs, address)
	}
}

func (hub *eventHub) broadcast(address string, ev player.Event) {
	hub.mu.Lock()
	subs := make([]*wsSubscriber, 0, len(hub.subs[address]))
	for sub := range hub.subs[address] {
		subs = append(subs, sub)
	}
	hub.mu.Unlock()

	for _, sub := range subs {
		if !sub.enqueue(ev) {
			logger.Debug("websocket send buffer full, dropping subscriber",
				logger.String("address", address))
			hub.unsubscribe(address, sub)
		}
	}
}

var playerEvents = newEventHub()

// WebSocketPlayerHandler streams player state transitions to the client.
// The token travels as a query parameter because browsers cannot set
// websocket headers.
func (h *APIHandler) WebSocketPlayerHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	session := h.players.Session(r.Context(), address)
	session.OnEvent(func(ev player.Event) {
		playerEvents.broadcast(address, ev)
	})

	sub := playerEvents.subscribe(address, conn)
	defer playerEvents.unsubscribe(address, sub)

	// push the current state so the client renders immediately
	sub.enqueue(session.Snapshot())

	// drain until the client goes away; events flow out via the pump
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
