// Package notify pushes favorite changes to a user's open websocket connections
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pokemon-tcg/internal/models"
	"github.com/pokemon-tcg/pkg/logger"
)

const (
	sendBuffer   = 16
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type subscriber struct {
	send chan models.FavoriteEvent
}

// Hub fans favorite events out to every connection of the affected user.
// A subscriber that can't keep up is disconnected rather than blocking publishers.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint]map[*subscriber]struct{}
	closed bool
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uint]map[*subscriber]struct{}),
	}
}

// Publish delivers ev to the user's subscribers without blocking
func (h *Hub) Publish(ev models.FavoriteEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[ev.UserID] {
		select {
		case sub.send <- ev:
		default:
			logger.Warn("[Notify] Dropping slow subscriber for user %d", ev.UserID)
			h.removeLocked(ev.UserID, sub)
		}
	}
}

// Subscribers returns how many connections the user has open
func (h *Hub) Subscribers(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// Close disconnects everyone; later connections are refused
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for userID, set := range h.subs {
		for sub := range set {
			h.removeLocked(userID, sub)
		}
	}
}

func (h *Hub) subscribe(userID uint) (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}

	sub := &subscriber{send: make(chan models.FavoriteEvent, sendBuffer)}
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	return sub, true
}

func (h *Hub) unsubscribe(userID uint, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, sub)
}

// removeLocked closes sub's channel exactly once: only the call that finds it
// in the map closes it.
func (h *Hub) removeLocked(userID uint, sub *subscriber) {
	set, ok := h.subs[userID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.send)
	if len(set) == 0 {
		delete(h.subs, userID)
	}
}

// ServeWS upgrades the request and streams the user's favorite events until
// the client goes away or the hub closes
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub, ok := h.subscribe(userID)
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		return nil
	}
	defer h.unsubscribe(userID, sub)

	done := make(chan struct{})
	go readLoop(conn, done)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case ev, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return nil
			}
			if err := conn.WriteJSON(ev); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// readLoop discards client messages; it exists to process pongs and notice disconnects
func readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("[Notify] WebSocket read error: %v", err)
			}
			return
		}
	}
}
