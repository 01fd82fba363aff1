package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/xelth-com/pantrywms/internal/inventory"
	"go.uber.org/zap"
)

// Stats receives hub counters
type Stats interface {
	SetWebsocketClients(n int)
	RecordEventPublished(eventType string)
}

// ErrHubStopped is returned for sends after the hub's Run loop has ended
var ErrHubStopped = errors.New("websocket hub stopped")

type nopStats struct{}

func (nopStats) SetWebsocketClients(int)     {}
func (nopStats) RecordEventPublished(string) {}

type directMessage struct {
	client *Client
	data   []byte
}

// Hub maintains the set of active clients and broadcasts inventory events
// to all of them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Outbound messages for every client
	broadcast chan []byte

	// Outbound messages for a single client
	direct chan directMessage

	// Closed when Run returns
	done chan struct{}

	log   *zap.Logger
	stats Stats

	// Mutex for reads of the client set from outside Run
	mu sync.RWMutex
}

// NewHub creates a new Hub instance. stats may be nil.
func NewHub(log *zap.Logger, stats Stats) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if stats == nil {
		stats = nopStats{}
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 64),
		done:       make(chan struct{}),
		log:        log,
		stats:      stats,
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.stats.SetWebsocketClients(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.stats.SetWebsocketClients(n)
			h.log.Debug("Live client connected", zap.String("client_id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debug("Live client disconnected",
					zap.String("client_id", client.ID),
					zap.String("device_id", client.DeviceID))
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.stats.SetWebsocketClients(n)

		case d := <-h.direct:
			h.mu.RLock()
			_, ok := h.clients[d.client]
			h.mu.RUnlock()
			if ok {
				select {
				case d.client.send <- d.data:
				default:
				}
			}

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead
					close(client.send)
					delete(h.clients, client)
				}
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.stats.SetWebsocketClients(n)
		}
	}
}

// Publish broadcasts a committed inventory event. It never blocks the
// caller; the event is dropped when the hub is saturated.
func (h *Hub) Publish(e inventory.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		h.log.Error("Failed to encode event", zap.String("type", e.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
		h.stats.RecordEventPublished(e.Type)
	default:
		h.log.Warn("Event dropped, hub saturated", zap.String("type", e.Type), zap.String("box_number", e.BoxNumber))
	}
}

// Done is closed once the hub has stopped
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
