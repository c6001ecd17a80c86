package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/prediction-service/activity"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHub_FollowReceivesActivity(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	c := dial(t, srv)
	require.NoError(t, c.WriteJSON(ClientMsg{Type: "follow", UserID: "u1"}))
	require.Eventually(t, func() bool { return hub.Followers("u1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(activity.Activity{Type: activity.TypePlaced, UserID: "u1", PredictionID: "p1", Coins: 100})
	hub.Broadcast(activity.Activity{Type: activity.TypePlaced, UserID: "u2", PredictionID: "p2"})

	_ = c.SetReadDeadline(time.Now().Add(time.Second))
	var got activity.Activity
	require.NoError(t, c.ReadJSON(&got))
	assert.Equal(t, "p1", got.PredictionID)
}

func TestHub_DropOnDisconnect(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	c := dial(t, srv)
	require.NoError(t, c.WriteJSON(ClientMsg{Type: "follow", UserID: "u1"}))
	require.Eventually(t, func() bool { return hub.Followers("u1") == 1 }, time.Second, 10*time.Millisecond)

	c.Close()
	assert.Eventually(t, func() bool { return hub.Followers("u1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_FailedWriteDropsOnlyThatClient(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	hub.writeWait = 200 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	stale := dial(t, srv)
	require.NoError(t, stale.WriteJSON(ClientMsg{Type: "follow", UserID: "u1"}))
	require.Eventually(t, func() bool { return hub.Followers("u1") == 1 }, time.Second, 10*time.Millisecond)

	hub.mu.RLock()
	var broken *client
	for c := range hub.subs["u1"] {
		broken = c
	}
	hub.mu.RUnlock()

	live := dial(t, srv)
	require.NoError(t, live.WriteJSON(ClientMsg{Type: "follow", UserID: "u1"}))
	require.Eventually(t, func() bool { return hub.Followers("u1") == 2 }, time.Second, 10*time.Millisecond)

	// lado do servidor morto: a escrita falha e não pode travar os demais
	_ = broken.conn.UnderlyingConn().Close()
	hub.Broadcast(activity.Activity{Type: activity.TypePlaced, UserID: "u1", PredictionID: "p1"})

	_ = live.SetReadDeadline(time.Now().Add(time.Second))
	var got activity.Activity
	require.NoError(t, live.ReadJSON(&got))
	assert.Equal(t, "p1", got.PredictionID)
	assert.Eventually(t, func() bool { return hub.Followers("u1") == 1 }, time.Second, 10*time.Millisecond)
}

func TestRedisSubscriber_RelaysToHub(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartRedisSubscriber(ctx, zap.NewNop(), rdb, "prediction_activity", hub)

	c := dial(t, srv)
	require.NoError(t, c.WriteJSON(ClientMsg{Type: "follow", UserID: "u1"}))
	require.Eventually(t, func() bool { return hub.Followers("u1") == 1 }, time.Second, 10*time.Millisecond)

	b := activity.NewRedisBroadcaster(rdb, "prediction_activity")
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("prediction_activity")["prediction_activity"] == 1
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, b.Publish(ctx, activity.Activity{Type: activity.TypeSettled, UserID: "u1", PredictionID: "p1", Outcome: "won"}))

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got activity.Activity
	require.NoError(t, c.ReadJSON(&got))
	assert.Equal(t, "won", got.Outcome)
}
