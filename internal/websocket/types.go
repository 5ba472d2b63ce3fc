// internal/websocket/types.go
package websocket

import "encoding/json"

// Command is a client-issued control instruction for the timer
type Command struct {
	Action  string          `json:"action"` // "start", "pause", "end", "reset", "set_breakpoint"
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Signal is a client-issued notification with no reply
type Signal struct {
	Name string `json:"name"` // "ready"
}

// WSEvent is a server-pushed event
type WSEvent struct {
	Type    string      `json:"type"`    // e.g. "overlay:state"
	Payload interface{} `json:"payload"` // event data
}

// Ack reports a command's outcome back to the issuing client
type Ack struct {
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}

// WSMessage is the single envelope for all WebSocket traffic
type WSMessage struct {
	// Message kind: "command", "signal", "event", "ack"
	Kind string `json:"kind"`

	// Command (kind == "command")
	Command *Command `json:"command,omitempty"`

	// Signal (kind == "signal")
	Signal *Signal `json:"signal,omitempty"`

	// Event (kind == "event")
	Event *WSEvent `json:"event,omitempty"`

	// Ack (kind == "ack")
	Ack *Ack `json:"ack,omitempty"`
}
