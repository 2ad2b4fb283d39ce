package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/focusplus/backend/internal/middleware"
	"github.com/focusplus/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub relays per-user events from Redis pub/sub to every websocket a
// user has open — frontend tabs and a running blocker alike. One
// relay goroutine exists per connected user, shared by all of that
// user's sockets, subscribed to the channel the event publisher
// writes to.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*websocket.Conn
	events  *redis.Client
	auth    *middleware.JWTAuth
	cancels map[uuid.UUID]context.CancelFunc
}

func NewHub(events *redis.Client, auth *middleware.JWTAuth) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID][]*websocket.Conn),
		events:  events,
		auth:    auth,
		cancels: make(map[uuid.UUID]context.CancelFunc),
	}
}

// HandleWebSocket authenticates the upgrade request via a token query
// param; browsers cannot set an Authorization header on a websocket
// handshake.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := h.auth.ParseUserID(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.attach(userID, conn)

	// Drain client frames only to notice the disconnect; the protocol
	// is server-to-client.
	go func() {
		defer h.detach(userID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) attach(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[userID] = append(h.clients[userID], conn)

	// First socket for this user starts the relay
	if len(h.clients[userID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancels[userID] = cancel
		go h.relay(ctx, userID)
	}

	log.Printf("WebSocket connected: user %s (total: %d)", userID, len(h.clients[userID]))
}

func (h *Hub) detach(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.clients[userID]
	for i, c := range conns {
		if c == conn {
			h.clients[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// Last socket gone, stop the relay
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
		if cancel, ok := h.cancels[userID]; ok {
			cancel()
			delete(h.cancels, userID)
		}
	}

	log.Printf("WebSocket disconnected: user %s", userID)
}

func (h *Hub) relay(ctx context.Context, userID uuid.UUID) {
	pubsub := h.events.Subscribe(ctx, models.UserEventChannel(userID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event models.WSEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Dropping malformed event for user %s: %v", userID, err)
				continue
			}
			h.deliver(userID, event)
		}
	}
}

func (h *Hub) deliver(userID uuid.UUID, event models.WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.clients[userID] {
		conn.WriteJSON(event)
	}
}
