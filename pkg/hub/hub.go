package hub

import (
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-moto-ergo/internal/log"
	"github.com/teslashibe/go-moto-ergo/pkg/protocol"
)

// Hub maintains the set of viewers per room and broadcasts to them
type Hub struct {
	// Name for logging
	name string

	// Registered clients by room
	rooms map[string]map[*Client]bool

	// Inbound messages to broadcast
	broadcast chan Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Guards rooms for read-only access from outside the loop
	mu sync.RWMutex

	done    chan struct{}
	running atomic.Bool
}

// New creates a new Hub
func New(name string) *Hub {
	return &Hub{
		name:       name,
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. Call it in a goroutine; it returns after
// Stop.
func (h *Hub) Run() {
	h.running.Store(true)
	defer h.running.Store(false)

	logger := log.With("hub", h.name)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.room]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.room] = room
			}
			room[client] = true
			count := len(room)
			h.mu.Unlock()
			logger.Debug("viewer connected", "room", client.room, "viewers", count)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			count := len(h.rooms[client.room])
			h.mu.Unlock()
			logger.Debug("viewer disconnected", "room", client.room, "viewers", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[message.Room] {
				select {
				case client.send <- message.Data:
				default:
					h.remove(client)
					logger.Warn("dropped slow viewer", "room", message.Room)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for _, room := range h.rooms {
				for client := range room {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with mu held
func (h *Hub) remove(client *Client) {
	room, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, ok := room[client]; ok {
		delete(room, client)
		close(client.send)
	}
	if len(room) == 0 {
		delete(h.rooms, client.room)
	}
}

// Stop ends the main loop and disconnects every viewer
func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Broadcast queues msg for its room
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn("broadcast channel full, dropping message", "hub", h.name, "room", msg.Room)
	}
}

// Publish encodes a protocol message and broadcasts it to room
func (h *Hub) Publish(room string, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	h.Broadcast(NewMessage(room, data))
	return nil
}

// ClientCount returns the number of viewers in room
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// TotalClients returns the number of viewers across all rooms
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// IsRunning returns whether the main loop is active
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// Handler returns a fiber handler that joins the room named by the :id
// route parameter. Non-upgrade requests get 426.
func (h *Hub) Handler() fiber.Handler {
	ws := websocket.New(func(conn *websocket.Conn) {
		NewClient(h, conn, conn.Params("id")).Run()
	})
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return ws(c)
	}
}
