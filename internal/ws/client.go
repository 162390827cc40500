package ws

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

const sendBufferSize = 256

// Client is one connected dashboard device. Events queue on the send
// channel and are drained by a single write pump, so delivery to one
// connection preserves publish order.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	rooms  map[string]struct{}
	closed bool
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		rooms: make(map[string]struct{}),
	}
}

// ReadPump blocks until the connection drops, then detaches the client
// from every room it joined.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.Disconnect(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// WritePump drains the send channel onto the wire.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *Client) trackRoom(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[name] = struct{}{}
}

func (c *Client) untrackRoom(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, name)
}

func (c *Client) joinedRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.rooms))
	for name := range c.rooms {
		names = append(names, name)
	}
	return names
}

// enqueue queues a message for the write pump. It returns false when the
// buffer is full or the client has already been disconnected. The closed
// flag shares the mutex with the channel send so a publish can never race
// closeSend onto a closed channel.
func (c *Client) enqueue(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
