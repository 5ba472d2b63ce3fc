// internal/websocket/client.go
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one connected overlay or dashboard surface
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

// NewClient creates a new client around an upgraded connection
func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

// SendMessage queues a message for the client's write pump. The send happens
// under the mutex so Close cannot close the channel mid-send.
func (c *Client) SendMessage(msg *WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return ErrClientBufferFull
	}
}

// SendEvent queues an event push
func (c *Client) SendEvent(eventType string, payload interface{}) error {
	return c.SendMessage(&WSMessage{
		Kind: "event",
		Event: &WSEvent{
			Type:    eventType,
			Payload: payload,
		},
	})
}

// SendAck reports a command outcome back to this client
func (c *Client) SendAck(action string, errMsg string) error {
	return c.SendMessage(&WSMessage{
		Kind: "ack",
		Ack:  &Ack{Action: action, Error: errMsg},
	})
}

// WritePump drains the Send channel onto the connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// Close shuts down the client's write pump. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

var (
	ErrClientBufferFull = &ClientError{Message: "client send buffer full"}
	ErrClientClosed     = &ClientError{Message: "client closed"}
)

type ClientError struct {
	Message string
}

func (e *ClientError) Error() string {
	return e.Message
}
