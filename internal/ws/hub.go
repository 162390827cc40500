package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Publisher pushes events to a named room. Order mutation paths depend on
// this interface, not on the hub, so a deployment without realtime wiring
// swaps in NewPublisher(nil, logger) and degrades to a warn-and-drop no-op.
type Publisher interface {
	Publish(room string, eventType EventType, data interface{})
}

// Hub is the process-wide room-scoped broadcast bus. Delivery is
// at-most-once and best-effort: an event published to a room with no
// members is dropped, nothing is buffered for late joiners, and
// subscribers recover missed events by refetching state on reconnect.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	logger *slog.Logger
}

// room carries its own lock so join/leave/publish on one room never
// contends with traffic on another. removed marks a room that has been
// deleted from the hub map; joiners that raced the deletion must not
// land in it or they would never receive another event.
type room struct {
	mu      sync.RWMutex
	members map[*Client]struct{}
	removed bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]*room),
		logger: logger,
	}
}

// Join adds the client to a room. Joining a room the client is already in
// is a no-op, including under concurrent calls.
func (h *Hub) Join(c *Client, name string) {
	for {
		h.mu.RLock()
		rm, ok := h.rooms[name]
		h.mu.RUnlock()

		if !ok {
			h.mu.Lock()
			rm, ok = h.rooms[name]
			if !ok {
				rm = &room{members: make(map[*Client]struct{})}
				h.rooms[name] = rm
			}
			h.mu.Unlock()
		}

		rm.mu.Lock()
		if rm.removed {
			// The last member left and reaped the room between our map
			// lookup and this lock. Retry against the fresh room.
			rm.mu.Unlock()
			continue
		}
		rm.members[c] = struct{}{}
		rm.mu.Unlock()
		break
	}

	c.trackRoom(name)
}

// Leave removes the client from a room. Safe to call for a client that
// already left or never joined.
func (h *Hub) Leave(c *Client, name string) {
	h.mu.RLock()
	rm, ok := h.rooms[name]
	h.mu.RUnlock()

	if !ok {
		return
	}

	rm.mu.Lock()
	delete(rm.members, c)
	empty := len(rm.members) == 0
	rm.mu.Unlock()

	c.untrackRoom(name)

	if empty {
		h.removeRoomIfEmpty(name)
	}
}

// Disconnect detaches the client from every room and closes its send
// channel. Called once by the read pump when the connection drops.
func (h *Hub) Disconnect(c *Client) {
	for _, name := range c.joinedRooms() {
		h.Leave(c, name)
	}
	c.closeSend()
}

// Publish delivers the event to every client currently in the room. A
// client whose send buffer is full is dropped rather than allowed to stall
// the room.
func (h *Hub) Publish(name string, eventType EventType, data interface{}) {
	h.mu.RLock()
	rm, ok := h.rooms[name]
	h.mu.RUnlock()

	if !ok {
		return
	}

	message, err := json.Marshal(Event{
		Room:      name,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
	if err != nil {
		h.logger.Error("failed to encode realtime event", "room", name, "type", eventType, "error", err)
		return
	}

	rm.mu.RLock()
	members := make([]*Client, 0, len(rm.members))
	for c := range rm.members {
		members = append(members, c)
	}
	rm.mu.RUnlock()

	for _, c := range members {
		if !c.enqueue(message) {
			h.logger.Warn("dropping slow realtime client", "room", name)
			go h.Disconnect(c)
		}
	}
}

// RoomSize returns the current number of clients in a room.
func (h *Hub) RoomSize(name string) int {
	h.mu.RLock()
	rm, ok := h.rooms[name]
	h.mu.RUnlock()

	if !ok {
		return 0
	}

	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.members)
}

func (h *Hub) removeRoomIfEmpty(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[name]
	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if len(rm.members) == 0 {
		rm.removed = true
		delete(h.rooms, name)
	}
}

// nopPublisher drops every event with a warning. It stands in for the hub
// when realtime infrastructure is not wired up, so publish paths never
// crash on a missing bus.
type nopPublisher struct {
	logger *slog.Logger
}

func (p nopPublisher) Publish(room string, eventType EventType, data interface{}) {
	p.logger.Warn("realtime hub not initialized, dropping event", "room", room, "type", eventType)
}

// NewPublisher wraps a hub as a Publisher, tolerating a nil hub.
func NewPublisher(hub *Hub, logger *slog.Logger) Publisher {
	if hub == nil {
		return nopPublisher{logger: logger}
	}
	return hub
}

// fanout forwards each event to every target in order.
type fanout []Publisher

func (f fanout) Publish(room string, eventType EventType, data interface{}) {
	for _, target := range f {
		target.Publish(room, eventType, data)
	}
}

// Fanout composes publishers so one mutation can feed both the live hub
// and slower sinks like outbound webhooks.
func Fanout(targets ...Publisher) Publisher {
	return fanout(targets)
}
