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
	gorillaws "github.com/gorilla/websocket"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/model"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func dialOrders(t *testing.T, hub *Hub, userID string) *gorillaws.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(hub, []string{"*"})
	router.GET("/ws/orders", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}, handler.ServeOrders)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/orders"
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.IsUserOnline(userID) }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_PublishOrderEventReachesOwnerOnly(t *testing.T) {
	hub := startHub(t)
	owner := dialOrders(t, hub, "user_owner")
	other := dialOrders(t, hub, "user_other")

	hub.PublishOrderEvent(model.OrderEvent{
		Type:          model.OrderEventCreated,
		UserID:        "user_owner",
		OrderID:       42,
		OrderNumber:   "ORD-1-ABC",
		OrderStatus:   model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	})

	require.NoError(t, owner.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := owner.ReadMessage()
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "order.created", got["type"])
	assert.Equal(t, float64(42), got["order_id"])
	assert.Equal(t, "ORD-1-ABC", got["order_number"])
	assert.NotContains(t, got, "user_id")

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "other users receive nothing")
}

func TestHub_PingPong(t *testing.T) {
	hub := startHub(t)
	conn := dialOrders(t, hub, "user_ping")

	require.NoError(t, conn.WriteMessage(gorillaws.TextMessage, []byte(`{"type":"ping"}`)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))
}

func TestHub_PongGoesToPingingSessionOnly(t *testing.T) {
	hub := startHub(t)
	phone := dialOrders(t, hub, "user_two_tabs")
	laptop := dialOrders(t, hub, "user_two_tabs")
	require.Eventually(t, func() bool { return hub.SessionCount("user_two_tabs") == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, phone.WriteMessage(gorillaws.TextMessage, []byte(`{"type":"ping"}`)))
	require.NoError(t, phone.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := phone.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))

	require.NoError(t, laptop.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = laptop.ReadMessage()
	assert.Error(t, err, "other sessions receive nothing")
}

func TestHub_ReplyToUnregisteredClientIsDropped(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, nil, "user_gone")

	assert.NotPanics(t, func() {
		require.NoError(t, hub.sendToClient(client, map[string]string{"type": "pong"}))
	})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, client.Send)
}

func TestHub_UnregisterTwiceIsSafe(t *testing.T) {
	hub := startHub(t)
	client := NewClient(hub, nil, "user_twice")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.IsUserOnline("user_twice") }, time.Second, 10*time.Millisecond)

	hub.Unregister(client)
	hub.Unregister(client)
	require.Eventually(t, func() bool { return !hub.IsUserOnline("user_twice") }, time.Second, 10*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)
}

func TestHub_PublishToOfflineUserIsDropped(t *testing.T) {
	hub := startHub(t)
	assert.NotPanics(t, func() {
		hub.PublishOrderEvent(model.OrderEvent{Type: model.OrderEventCancelled, UserID: "nobody"})
		hub.PublishOrderEvent(model.OrderEvent{Type: model.OrderEventCancelled})
	})
	assert.Equal(t, 0, hub.SessionCount("nobody"))
}
