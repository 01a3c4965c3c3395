package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
)

const (
	// inbound messages per client per second
	maxMessagesPerSecond = 10

	sendBufferSize = 64
)

// ClientMessage is the only inbound frame a client may send.
type ClientMessage struct {
	Type string `json:"type"` // ping
}

type Client struct {
	hub    *Hub
	conn   *Conn
	UserID string
	Send   chan []byte

	rateMu        sync.Mutex
	messageCount  int
	lastResetTime time.Time
}

func NewClient(hub *Hub, conn *Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// delivery is one payload addressed to every session of a user.
type delivery struct {
	UserID  string
	Message []byte
}

// reply is one payload addressed to a single session.
type reply struct {
	client  *Client
	Message []byte
}

// Hub fans order events out to the sessions of the order's owner. A user may
// hold several sessions (tabs, devices).
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	replies    chan reply

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan delivery, 1024),
		replies:    make(chan reply, 256),
	}
}

// Run owns the client registry until ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[d.UserID] {
				select {
				case client.Send <- d.Message:
				default:
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": d.UserID,
					})
				}
			}
			h.mu.RUnlock()

		case r := <-h.replies:
			// the session may have gone away since the reply was queued
			if !h.registered(r.client) {
				continue
			}
			select {
			case r.client.Send <- r.Message:
			default:
				logger.Warn("Client send buffer full, reply dropped", map[string]interface{}{
					"user_id": r.client.UserID,
				})
			}
		}
	}
}

func (h *Hub) registered(client *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[client.UserID] {
		if c == client {
			return true
		}
	}
	return false
}

// remove drops one session. Removing an unknown session is a no-op, so a
// client unregistered twice never has its channel closed twice.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.clients[client.UserID]
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}

	if len(kept) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(kept),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, list := range h.clients {
		for _, c := range list {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToUser queues a JSON payload for every session of userID. Messages are
// dropped when the hub is saturated.
func (h *Hub) SendToUser(userID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- delivery{UserID: userID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"user_id": userID,
		})
	}
	return nil
}

// sendToClient queues a JSON payload for one session only.
func (h *Hub) sendToClient(client *Client, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal reply", err, nil)
		return err
	}

	select {
	case h.replies <- reply{client: client, Message: data}:
	default:
		logger.Warn("Reply channel full, message dropped", map[string]interface{}{
			"user_id": client.UserID,
		})
	}
	return nil
}

// PublishOrderEvent pushes an order lifecycle event to the order's owner.
func (h *Hub) PublishOrderEvent(event model.OrderEvent) {
	if event.UserID == "" {
		return
	}
	if !h.IsUserOnline(event.UserID) {
		return
	}
	if err := h.SendToUser(event.UserID, event); err != nil {
		logger.Warn("Failed to publish order event", map[string]interface{}{
			"order_id": event.OrderID,
			"type":     event.Type,
		})
	}
}

func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// HandleClientMessage answers pings and ignores everything else.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Debug("Ignoring malformed client message", map[string]interface{}{
			"user_id": client.UserID,
		})
		return
	}

	if msg.Type == "ping" {
		_ = h.sendToClient(client, map[string]string{"type": "pong"})
	}
}
