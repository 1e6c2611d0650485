package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"roomreports/internal/infrastructure"
)

// Message types sent to dashboard clients
const (
	TypeConnection     = "connection"
	TypeDashboardState = "dashboard:state"
)

const broadcastBuffer = 64

// Message is the envelope of every server push
type Message struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Hub keeps the connected dashboard clients and pushes view state changes
// to them. The last state pushed is replayed to every new client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu        sync.RWMutex
	publishMu sync.Mutex
	latest    []byte
	running   bool

	logger   *slog.Logger
	metrics  *infrastructure.ReportMetrics
	upgrader websocket.Upgrader

	messagesSent    int64
	droppedMessages int64

	quit chan struct{}
	done chan struct{}
}

// NewHub creates a hub. allowedOrigins limits which pages may connect;
// empty allows only same-host requests.
func NewHub(logger *slog.Logger, metrics *infrastructure.ReportMetrics, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] || set[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// Start runs the hub loop in the background
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- message:
					h.mu.Lock()
					h.messagesSent++
					h.mu.Unlock()
				default:
					// Slow client, drop it rather than stall every other client
					h.logger.Warn("Client send buffer full, disconnecting",
						slog.String("client_id", client.id))
					h.removeClient(client)
				}
			}
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	latest := h.latest
	h.mu.Unlock()

	ctx := context.Background()
	if client.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, client.traceID)
	}
	h.metrics.RecordWebSocketClients(ctx, 1)
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	hello, err := encode(TypeConnection, map[string]string{
		"status":    "connected",
		"client_id": client.id,
	})
	if err == nil {
		client.send <- hello
	}
	if latest != nil {
		client.send <- latest
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.RecordWebSocketClients(context.Background(), -1)
	h.logger.Info("Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

func encode(msgType string, data any) ([]byte, error) {
	return json.Marshal(Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// PublishState queues a dashboard state push. It never blocks; when the
// queue is full the oldest queued push is dropped, so the newest state is
// always delivered.
func (h *Hub) PublishState(state any) {
	data, err := encode(TypeDashboardState, state)
	if err != nil {
		h.logger.Error("Error marshaling dashboard state", slog.String("error", err.Error()))
		return
	}

	// Serialized so the queue tail always matches latest
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	h.latest = data
	h.mu.Unlock()

	for {
		select {
		case h.broadcast <- data:
			return
		default:
		}

		select {
		case <-h.broadcast:
			h.mu.Lock()
			h.droppedMessages++
			h.mu.Unlock()
			h.logger.Warn("Broadcast queue full, dropping oldest dashboard state push")
		default:
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns counters for the health endpoint
func (h *Hub) Stats() map[string]int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]int64{
		"active_clients":   int64(len(h.clients)),
		"messages_sent":    h.messagesSent,
		"dropped_messages": h.droppedMessages,
	}
}

// Stop disconnects every client and ends the hub loop
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

// ServeHTTP upgrades the request and attaches a client to the hub
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(h, NewConnectionWrapper(conn), infrastructure.GetTraceID(r.Context()), h.logger)
	if !h.attach(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// attach hands client to the hub loop unless the hub is stopping
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// detach hands client back to the hub loop unless the hub is stopping
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}
