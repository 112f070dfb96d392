package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Подключает websocket клиента к hub от имени пользователя
func feedConn(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}

		hub.add(conn, userID)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// Одновременные broadcast не должны пересекаться на одном соединении:
// у gorilla допустим только один писатель
func TestBroadcastConcurrentWrites(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	conn := feedConn(t, hub, "alice")

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < perWriter; j++ {
				hub.Broadcast("alice", FeedEvent{Type: "trade_created"})
			}
		}()
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for i := 0; i < writers*perWriter; i++ {
		var event FeedEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}

		if event.Type != "trade_created" {
			t.Fatalf("frame %d corrupted: %+v", i, event)
		}
	}

	wg.Wait()
}

// События доставляются только подключениям владельца
func TestBroadcastScopedToOwner(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))

	alice := feedConn(t, hub, "alice")
	bob := feedConn(t, hub, "bob")

	if hub.Count() != 2 {
		t.Fatalf("expected 2 clients, got %d", hub.Count())
	}

	hub.Broadcast("alice", FeedEvent{Type: "trade_created", Payload: map[string]string{"symbol": "BTCUSDT"}})

	alice.SetReadDeadline(time.Now().Add(2 * time.Second))

	var event FeedEvent
	if err := alice.ReadJSON(&event); err != nil {
		t.Fatalf("owner did not receive event: %v", err)
	}

	if event.Type != "trade_created" {
		t.Fatalf("unexpected event: %+v", event)
	}

	// Чужой дашборд не должен получить ничего
	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))

	if err := bob.ReadJSON(&event); err == nil {
		t.Fatalf("foreign client received event: %+v", event)
	}
}
