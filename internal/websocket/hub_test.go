package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"travelapproval/internal/config"
	"travelapproval/internal/middleware"
	"travelapproval/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("ws-secret")

func newServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	auth := middleware.NewAuth(&config.Config{JWTSecret: secret})
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, auth, c) })

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID.String(), "role": role}).SignedString(secret)
	require.NoError(t, err)
	return s
}

func wsURL(srv *httptest.Server, tok string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tok
}

func TestServeWs_RejectsBadTokens(t *testing.T) {
	_, srv := newServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "garbage"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, token(t, uuid.New(), "guest")), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPush_DeliversOnlyToRecipient(t *testing.T) {
	hub, srv := newServer(t)
	alice, bob := uuid.New(), uuid.New()

	aliceConn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token(t, alice, model.RoleEmployee)), nil)
	require.NoError(t, err)
	defer aliceConn.Close()
	bobConn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token(t, bob, model.RoleManager)), nil)
	require.NoError(t, err)
	defer bobConn.Close()

	require.Eventually(t, func() bool {
		return hub.ConnectedClients(alice) == 1 && hub.ConnectedClients(bob) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Push([]model.Notification{{
		ID:      uuid.New(),
		UserID:  alice,
		Type:    model.NotificationRequestApproved,
		Message: "Your travel request has been approved",
	}})

	_ = aliceConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := aliceConn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "notification", ev.Event)
	assert.Equal(t, alice, ev.Data.UserID)
	assert.Equal(t, model.NotificationRequestApproved, ev.Data.Type)

	_ = bobConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's notification")
}

func TestPush_WithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			hub.Push([]model.Notification{{ID: uuid.New(), UserID: uuid.New()}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push blocked without a running hub")
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub, srv := newServer(t)
	userID := uuid.New()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token(t, userID, model.RoleAdmin)), nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.ConnectedClients(userID) == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ConnectedClients(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}
