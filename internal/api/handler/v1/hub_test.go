package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/domain"
	"github.com/Pfischty/Kassensystem-und-Shotcounter/internal/service"
)

type stubEvents struct {
	EventService
	event domain.Event
	err   error
}

func (s stubEvents) RequireActiveEvent(context.Context, bool, bool) (domain.Event, error) {
	return s.event, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLeaderboardHub_Broadcast(t *testing.T) {
	hub := NewLeaderboardHub(stubEvents{event: domain.Event{ID: 1, ShotcounterEnabled: true}})
	go hub.Run()
	defer hub.Stop()

	router := gin.New()
	router.GET("/ws", hub.HandleWebSocket)
	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.clientCount() == 1 }, time.Second, 10*time.Millisecond)

	// updates of other events are not forwarded
	hub.NotifyLeaderboard(2)
	hub.NotifyLeaderboard(1)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"update_leaderboard"}`, string(msg))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.clientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestLeaderboardHub_NoActiveEvent(t *testing.T) {
	hub := NewLeaderboardHub(stubEvents{err: service.ErrNoActiveEvent})

	router := gin.New()
	router.GET("/ws", hub.HandleWebSocket)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaderboardHub_NotifyNeverBlocks(t *testing.T) {
	hub := NewLeaderboardHub(stubEvents{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastQueue*2; i++ {
			hub.NotifyLeaderboard(1)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyLeaderboard blocked without a running hub")
	}
}
