package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/themobileprof/mhaas-be/internal/db"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// ActivityEvent is the wire format for a streamed activity log entry.
type ActivityEvent struct {
	Type       string    `json:"type"` // always "activity"
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID *string   `json:"resource_id,omitempty"`
	At         time.Time `json:"at"`
}

// EventHub streams activity log entries to connected admin dashboards. It
// implements the audit package's Broadcaster so every recorded activity,
// including scheduler dispatches, shows up live.
type EventHub struct {
	jwtSecret string

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewEventHub creates an event hub
func NewEventHub(jwtSecret string) *EventHub {
	return &EventHub{
		jwtSecret: jwtSecret,
		clients:   make(map[*websocket.Conn]bool),
	}
}

// BroadcastActivity fans an activity entry out to every connected client.
// Clients that fail to accept the write are dropped.
func (h *EventHub) BroadcastActivity(entry db.LogEntry) {
	event := ActivityEvent{
		Type:       "activity",
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		At:         entry.CreatedAt,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("[ws] dropping client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// HandleEvents upgrades an admin connection and keeps it subscribed until the
// client goes away. Authentication uses a JWT passed as a query parameter since
// browsers cannot set headers on WebSocket upgrades.
func (h *EventHub) HandleEvents(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	role, _ := claims["role"].(string)
	if role != db.RoleSuperAdmin && role != db.RoleHospitalAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Read loop exists only to notice disconnects; clients don't send anything.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				if _, ok := h.clients[conn]; ok {
					conn.Close()
					delete(h.clients, conn)
				}
				h.mu.Unlock()
				return
			}
		}
	}()
}
