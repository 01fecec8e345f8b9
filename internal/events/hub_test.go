package events

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/metrics"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	hub := NewHub(HubConfig{}, zap.NewNop(), m)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, uuid.New())
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := Decode(data)
	require.NoError(t, err)
	return msg
}

func TestHub_PublishReachesAllClients(t *testing.T) {
	hub, srv := newTestHub(t)
	a := dialHub(t, srv)
	b := dialHub(t, srv)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	err := hub.Publish(context.Background(), NewMessage(domain.KindTask, ActionCreated, Payload{"id": "t1"}))
	require.NoError(t, err)

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		assert.Equal(t, Type("TASK_CREATED"), msg.Type)
		assert.Equal(t, "t1", msg.Payload["id"])
	}
}

func TestHub_PreservesPublishOrder(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dialHub(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, hub.Publish(ctx, NewMessage(domain.KindProject, ActionCreated, Payload{"id": "p1"})))
	require.NoError(t, hub.Publish(ctx, NewMessage(domain.KindProject, ActionUpdated, Payload{"id": "p1"})))
	require.NoError(t, hub.Publish(ctx, NewMessage(domain.KindProject, ActionDeleted, Payload{"id": "p1"})))

	assert.Equal(t, Type("PROJECT_CREATED"), readMessage(t, conn).Type)
	assert.Equal(t, Type("PROJECT_UPDATED"), readMessage(t, conn).Type)
	assert.Equal(t, Type("PROJECT_DELETED"), readMessage(t, conn).Type)
}

func TestHub_UnregistersClosedClients(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dialHub(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRedisBridge_WithoutRedisPublishesLocally(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dialHub(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	bridge := NewRedisBridge(nil, "", hub, zap.NewNop(), nil)
	require.NoError(t, bridge.Publish(context.Background(), NewMessage(domain.KindComment, ActionCreated, Payload{"id": "c1", "taskId": "t1"})))

	msg := readMessage(t, conn)
	assert.Equal(t, Type("COMMENT_CREATED"), msg.Type)
	assert.Equal(t, "t1", msg.Payload["taskId"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, bridge.Run(ctx))
}

func TestRedisBridge_UnreachableRedis(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dialHub(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	core, logs := observer.New(zap.WarnLevel)
	bridge := NewRedisBridge(client, "", hub, zap.New(core), nil)
	bridge.retryDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bridge.Run(ctx) }()

	// the subscription keeps being retried instead of giving up
	require.Eventually(t, func() bool {
		return logs.FilterMessage("Event subscription lost, retrying").Len() >= 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, bridge.Subscribed())

	// local clients still hear about mutations
	require.NoError(t, bridge.Publish(context.Background(), NewMessage(domain.KindTask, ActionUpdated, Payload{"id": "t1"})))
	msg := readMessage(t, conn)
	assert.Equal(t, Type("TASK_UPDATED"), msg.Type)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()

	_, ok := rec.Last()
	assert.False(t, ok)

	require.NoError(t, rec.Publish(ctx, NewMessage(domain.KindTask, ActionCreated, nil)))
	require.NoError(t, rec.Publish(ctx, NewMessage(domain.KindStory, ActionUpdated, nil)))

	assert.Equal(t, []Type{"TASK_CREATED", "STORY_UPDATED"}, rec.Types())
	last, ok := rec.Last()
	assert.True(t, ok)
	assert.Equal(t, Type("STORY_UPDATED"), last.Type)

	rec.Err = errors.New("down")
	assert.Error(t, rec.Publish(ctx, NewMessage(domain.KindTask, ActionDeleted, nil)))
	assert.Len(t, rec.Messages(), 2)

	rec.Reset()
	assert.Empty(t, rec.Messages())
}
