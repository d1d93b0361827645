package events

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ArowuTest/promo-lottery/internal/lottery"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/events", hub.Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, hub)

	hub.Publish(lottery.Event{Type: lottery.EventDrawSettled, State: lottery.StateSettled, TierKey: "grand", Remaining: 1})

	var got lottery.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, lottery.EventDrawSettled, got.Type)
	assert.Equal(t, lottery.StateSettled, got.State)
	assert.Equal(t, "grand", got.TierKey)
	assert.Equal(t, 1, got.Remaining)
}

func TestAnimatorFrames(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, hub)
	a := NewAnimator(hub)

	a.SetSpeed(15)
	a.Start()
	a.Cancel()
	a.Cancel()

	want := []Animation{
		{Type: AnimationType, Running: false, Speed: 15},
		{Type: AnimationType, Running: true, Speed: 15},
		{Type: AnimationType, Running: false, Speed: 15},
	}
	for _, w := range want {
		var got Animation
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, w, got)
	}
	assert.Equal(t, Animation{Type: AnimationType, Speed: 15}, a.Current())
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, hub)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(lottery.Event{Type: lottery.EventStateChanged})
	hub.Close()
}
