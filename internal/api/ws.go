package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// FeedEvent - событие live-ленты (создание/изменение/удаление сделок и планов)
type FeedEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// feedClient - одно подключение дашборда.
// gorilla допускает только одного писателя на соединение, поэтому
// каждая запись идет под мьютексом клиента
type feedClient struct {
	conn   *websocket.Conn
	userID string
	mu     sync.Mutex
}

func (c *feedClient) write(event FeedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteJSON(event)
}

// Hub управляет websocket подключениями дашборда
type Hub struct {
	clients map[*websocket.Conn]*feedClient
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewHub создает новый hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*feedClient),
		logger:  logger,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Браузер не шлет Origin совпадающий с API при раздельном деплое фронтенда
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Broadcast рассылает событие подключениям владельца.
// События приватны: чужие дашборды их не видят
func (hub *Hub) Broadcast(userID string, event FeedEvent) {
	hub.mu.RLock()
	targets := make([]*feedClient, 0, len(hub.clients))
	for _, client := range hub.clients {
		if client.userID == userID {
			targets = append(targets, client)
		}
	}
	hub.mu.RUnlock()

	for _, client := range targets {
		if err := client.write(event); err != nil {
			hub.logger.Warn("Failed to push feed event", slog.Any("error", err))
		}
	}
}

// Count возвращает число активных подключений
func (hub *Hub) Count() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	return len(hub.clients)
}

func (hub *Hub) add(conn *websocket.Conn, userID string) {
	hub.mu.Lock()
	hub.clients[conn] = &feedClient{conn: conn, userID: userID}
	hub.mu.Unlock()
}

func (hub *Hub) remove(conn *websocket.Conn) {
	hub.mu.Lock()
	delete(hub.clients, conn)
	hub.mu.Unlock()
}

// HandleWS апгрейдит соединение и держит его до отключения клиента.
// Токен передается в query (?token=), заголовки при upgrade недоступны
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.respondError(w, http.StatusUnauthorized, "Token required")
		return
	}

	user, err := h.bridge.Verify(r.Context(), token)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	h.hub.add(conn, user.ID)

	h.logger.Info("🔌 Feed client connected",
		slog.String("user_id", user.ID),
		slog.Int("clients", h.hub.Count()))

	// Читаем до закрытия - клиент ничего не шлет, но read нужен для детекта разрыва
	go func() {
		defer func() {
			h.hub.remove(conn)
			conn.Close()

			h.logger.Info("🔌 Feed client disconnected", slog.String("user_id", user.ID))
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
