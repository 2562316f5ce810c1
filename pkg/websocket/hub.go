package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"goride-ledger/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hub owns the connected clients. Registration, room membership and delivery
// all happen on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan Message
	logger     *logger.Logger

	mutex     sync.RWMutex
	connected int
}

type Message struct {
	Type      string                 `json:"type"`
	RoomID    string                 `json:"room_id,omitempty"`
	UserID    primitive.ObjectID     `json:"user_id,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func UserRoom(userID primitive.ObjectID) string {
	return "user_" + userID.Hex()
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan Message, 256),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.removeClient(client)
			}
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.deliver:
			h.sendToRoom(message)
		}
	}
}

// Deliver queues a message for the local clients in message.RoomID. It never
// blocks the caller; a full queue drops the message.
func (h *Hub) Deliver(message Message) {
	if message.Timestamp == 0 {
		message.Timestamp = getCurrentTimestamp()
	}
	select {
	case h.deliver <- message:
	default:
		h.logger.WithField("room_id", message.RoomID).Warn("WebSocket delivery queue full, message dropped")
	}
}

func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.connected
}

func (h *Hub) addClient(client *Client) {
	h.clients[client] = true
	h.joinRoom(client, UserRoom(client.UserID))
	h.setConnected()

	h.logger.WithUserID(client.UserID).Debug("WebSocket client registered")

	h.sendToClient(client, Message{
		Type:      "welcome",
		UserID:    client.UserID,
		Timestamp: getCurrentTimestamp(),
		Data:      map[string]interface{}{"message": "Connected successfully"},
	})
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	h.setConnected()

	h.logger.WithUserID(client.UserID).Debug("WebSocket client unregistered")
}

func (h *Hub) sendToRoom(message Message) {
	room, exists := h.rooms[message.RoomID]
	if !exists {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode websocket message")
		return
	}
	for client := range room {
		h.push(client, data)
	}
}

func (h *Hub) sendToClient(client *Client, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	h.push(client, data)
}

// push drops clients that stopped draining their send buffer.
func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.removeClient(client)
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) setConnected() {
	h.mutex.Lock()
	h.connected = len(h.clients)
	h.mutex.Unlock()
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
