package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handicapper/pkg/logger"
)

func decode(t *testing.T, data []byte) Message {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a := NewClient(hub, nil, "u1", ClientOptions{})
	b := NewClient(hub, nil, "u1", ClientOptions{})
	other := NewClient(hub, nil, "u2", ClientOptions{})
	hub.addClient(a)
	hub.addClient(b)
	hub.addClient(other)

	// Drain welcome messages.
	<-a.send
	<-b.send
	<-other.send

	n := hub.SendToUser("u1", Message{Type: MessageTypeChatMessage, ConversationID: "u1_h1"})

	assert.Equal(t, 2, n)
	assert.Equal(t, "u1_h1", decode(t, <-a.send).ConversationID)
	assert.Equal(t, "u1_h1", decode(t, <-b.send).ConversationID)
	assert.Len(t, other.send, 0)
	assert.True(t, hub.IsOnline("u1"))
	assert.Equal(t, 3, hub.ConnectionCount())
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(logger.NewNop())
	client := NewClient(hub, nil, "u1", ClientOptions{})
	hub.addClient(client)

	for i := 0; i < sendBuffer; i++ {
		hub.SendToUser("u1", Message{Type: MessageTypeTyping})
	}

	assert.False(t, hub.IsOnline("u1"))
	assert.Equal(t, 0, hub.SendToUser("u1", Message{Type: MessageTypeTyping}))
}

func TestHub_RemoveClientIsIdempotent(t *testing.T) {
	hub := NewHub(logger.NewNop())
	client := NewClient(hub, nil, "u1", ClientOptions{})
	hub.addClient(client)

	hub.removeClient(client)
	assert.NotPanics(t, func() { hub.removeClient(client) })
	assert.False(t, hub.IsOnline("u1"))
}

func TestHandler_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.NewNop())
	received := make(chan Message, 1)
	hub.OnMessage(func(_ context.Context, userID string, msg Message) {
		received <- msg
	})
	go hub.Run(ctx)

	handler := NewHandler(ctx, hub, HandlerConfig{AllowedOrigins: []string{"*"}})
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set("user_id", "u1")
		handler.HandleWebSocket(c)
	})
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, MessageTypeWelcome, decode(t, data).Type)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeTyping, ConversationID: "u1_h1"}))

	select {
	case msg := <-received:
		assert.Equal(t, "u1", msg.From)
		assert.Equal(t, "u1_h1", msg.ConversationID)
	case <-time.After(2 * time.Second):
		t.Fatal("inbound message not dispatched")
	}

	hub.SendToUser("u1", Message{Type: MessageTypeChatMessage, Data: map[string]interface{}{"text": "hi"}})
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "hi", decode(t, data).Data["text"])
}

func TestHandler_RequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(context.Background(), NewHub(logger.NewNop()), HandlerConfig{})
	router := gin.New()
	router.GET("/ws", handler.HandleWebSocket)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.handicapper.io"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://app.handicapper.io")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
