package websocket

import (
	"context"
	"sync"
	"time"

	"handicapper/pkg/logger"
)

// InboundHandler receives messages a connected user sends over the socket.
type InboundHandler func(ctx context.Context, userID string, msg Message)

// Hub tracks live connections per user. A user may hold several
// connections, one per device.
type Hub struct {
	users      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	inbound    InboundHandler
	mutex      sync.RWMutex
	logger     *logger.Logger
}

type Message struct {
	Type           string                 `json:"type"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	From           string                 `json:"from,omitempty"`
	Timestamp      int64                  `json:"timestamp"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

const (
	MessageTypeWelcome     = "welcome"
	MessageTypeChatMessage = "chat_message"
	MessageTypeTyping      = "typing"
	MessageTypeError       = "error"
)

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		users:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

// OnMessage sets the handler for client-originated messages. It must be
// called before Run.
func (h *Hub) OnMessage(handler InboundHandler) {
	h.inbound = handler
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mutex.Lock()
	conns, ok := h.users[client.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.users[client.UserID] = conns
	}
	conns[client] = struct{}{}
	h.mutex.Unlock()

	h.logger.WithUserID(client.UserID).Debug("websocket client registered")

	client.enqueue(Message{
		Type:      MessageTypeWelcome,
		Timestamp: now(),
		Data:      map[string]interface{}{"message": "connected"},
	})
}

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns, ok := h.users[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}

	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.users, client.UserID)
	}

	h.logger.WithUserID(client.UserID).Debug("websocket client unregistered")
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, conns := range h.users {
		for client := range conns {
			close(client.send)
		}
		delete(h.users, userID)
	}
}

// SendToUser delivers msg to every connection of userID and returns how many
// connections accepted it. Connections whose buffer is full are dropped.
func (h *Hub) SendToUser(userID string, msg Message) int {
	if msg.Timestamp == 0 {
		msg.Timestamp = now()
	}

	h.mutex.RLock()
	var delivered int
	var slow []*Client
	for client := range h.users[userID] {
		if client.enqueue(msg) {
			delivered++
		} else {
			slow = append(slow, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range slow {
		h.logger.WithUserID(userID).Warn("dropping slow websocket client")
		h.removeClient(client)
	}

	return delivered
}

func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.users[userID]) > 0
}

func (h *Hub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for _, conns := range h.users {
		n += len(conns)
	}
	return n
}

func (h *Hub) dispatch(ctx context.Context, client *Client, msg Message) {
	msg.From = client.UserID
	msg.Timestamp = now()

	if h.inbound == nil {
		return
	}
	h.inbound(ctx, client.UserID, msg)
}

func now() int64 {
	return time.Now().Unix()
}
