package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/pantrywms/internal/inventory"
)

var _ inventory.EventPublisher = (*Hub)(nil)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishReachesEveryClient(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	waitForClients(t, hub, 2)

	at := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	hub.Publish(inventory.Event{Type: inventory.EventBoxFilled, BoxNumber: "BOX00001", Location: "0102A1", At: at})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var got inventory.Event
		require.NoError(t, json.Unmarshal(msg, &got))
		assert.Equal(t, inventory.EventBoxFilled, got.Type)
		assert.Equal(t, "BOX00001", got.BoxNumber)
		assert.Equal(t, "0102A1", got.Location)
	}
}

func TestDeviceIdentifyAck(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteJSON(BaseMessage{Type: "DEVICE_IDENTIFY", DeviceID: "scanner-7", MsgID: "m1"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "ACK", ack["type"])
	assert.Equal(t, "m1", ack["msgId"])
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestStoppedHubDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	select {
	case <-hub.Done():
	default:
		t.Fatal("done channel still open after Run returned")
	}

	c := &Client{hub: hub, send: make(chan []byte, 1), ID: "ws_test"}
	finished := make(chan struct{})
	go func() {
		c.leave()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("leave blocked on a stopped hub")
	}

	assert.ErrorIs(t, c.SendJSON(map[string]string{"type": "ACK"}), ErrHubStopped)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, hub.ClientCount())
}
