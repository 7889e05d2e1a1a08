// Package broadcast pushes route status changes to connected check-in
// boards over WebSocket so screens update without polling.
package broadcast

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"hamilton_tms/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// allAreas is the subscription key for clients that want every area's events.
const allAreas = ""

// Hub fans out dispatch events to board clients. Clients subscribe per
// pickup area; subscribing with no area receives everything.
type Hub struct {
	areaClients map[string]map[*websocket.Conn]bool
	broadcast   chan map[string]interface{}
	mu          sync.Mutex
}

// NewHub creates a Hub and starts its broadcasting goroutine.
func NewHub() *Hub {
	hub := &Hub{
		areaClients: make(map[string]map[*websocket.Conn]bool),
		broadcast:   make(chan map[string]interface{}, 100),
	}
	go hub.run()
	return hub
}

// run drains the broadcast channel and writes each event to subscribers of
// the event's area plus the all-areas subscribers.
func (h *Hub) run() {
	for msg := range h.broadcast {
		areaID, _ := msg["area_id"].(string)

		h.mu.Lock()
		targets := make([]*websocket.Conn, 0, 8)
		for conn := range h.areaClients[areaID] {
			targets = append(targets, conn)
		}
		if areaID != allAreas {
			for conn := range h.areaClients[allAreas] {
				targets = append(targets, conn)
			}
		}
		h.mu.Unlock()

		for _, conn := range targets {
			go func(c *websocket.Conn, event map[string]interface{}) {
				if err := c.WriteJSON(event); err != nil {
					if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
						logrus.WithField("conn_ptr", fmt.Sprintf("%p", c)).Info("Board client closed during broadcast, unregistering.")
						h.UnregisterClient(allAreas, c)
						h.UnregisterClient(areaID, c)
					} else {
						logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", c)).Warn("Failed to send event to board client.")
					}
				}
			}(conn, msg)
		}
	}
}

// RegisterClient adds a board connection under an area subscription.
func (h *Hub) RegisterClient(areaID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.areaClients[areaID]; !ok {
		h.areaClients[areaID] = make(map[*websocket.Conn]bool)
	}
	h.areaClients[areaID][conn] = true
	logrus.WithFields(logrus.Fields{
		"area_id":  areaID,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}).Info("Board client registered with Hub.")
}

// UnregisterClient removes a board connection from an area subscription.
func (h *Hub) UnregisterClient(areaID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.areaClients[areaID]; ok {
		if _, present := clients[conn]; !present {
			return
		}
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.areaClients, areaID)
			logrus.WithField("area_id", areaID).Debug("Removed area entry as no clients are left.")
		}
		logrus.WithFields(logrus.Fields{
			"area_id":  areaID,
			"conn_ptr": fmt.Sprintf("%p", conn),
		}).Info("Board client unregistered from Hub.")
	}
}

// Publish queues an event for broadcast. Events carry at least "event" and
// "area_id" keys. The channel is buffered; a full channel drops the event
// rather than blocking a request handler.
func (h *Hub) Publish(event map[string]interface{}) {
	event["sent_at"] = time.Now().UTC().Format(time.RFC3339)
	select {
	case h.broadcast <- event:
	default:
		logrus.Warn("Event broadcast channel full, dropping message. Consider increasing buffer size or processing rate.")
	}
}

// PublishStatusChange is the common case: a route moved through the
// not_present / arrived / ready ring.
func (h *Hub) PublishStatusChange(routeID, routeNumber, areaID, status, statusText, statusColor string, guidePresent bool) {
	h.Publish(map[string]interface{}{
		"event":         "route_status",
		"route_id":      routeID,
		"route_number":  routeNumber,
		"area_id":       areaID,
		"status":        status,
		"status_text":   statusText,
		"status_color":  statusColor,
		"guide_present": guidePresent,
	})
}

// PublishReset tells boards in an area (or all boards) to refetch.
func (h *Hub) PublishReset(areaID string) {
	h.Publish(map[string]interface{}{
		"event":   "board_reset",
		"area_id": areaID,
	})
}

// ServeWS is the Gin handler for board WebSocket connections. Clients
// authenticate with a JWT in the token query parameter and may pass area_id
// to scope their subscription.
func (h *Hub) ServeWS(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		logrus.Warn("WebSocket connection attempt: Missing token query parameter.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
		return
	}
	claims, err := middleware.ValidateToken(tokenString)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket connection attempt with invalid token.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	areaID := c.Query("area_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	logrus.WithFields(logrus.Fields{
		"user_id": claims.UserID,
		"area_id": areaID,
	}).Info("Board WebSocket connection established.")

	h.RegisterClient(areaID, conn)
	defer h.UnregisterClient(areaID, conn)

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("area_id", areaID).Info("Board WebSocket closed normally or abnormally.")
			} else {
				logrus.WithError(err).Error("Error reading WebSocket message from board client.")
			}
			break
		}
		logrus.WithField("area_id", areaID).Warn("Board client sent unexpected message. Ignoring.")
	}
}
