// internal/websocket/server_test.go
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type recordingHandler struct {
	mu       sync.Mutex
	commands []string
	readies  int
	fail     bool
}

func (h *recordingHandler) HandleCommand(action string, payload json.RawMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = append(h.commands, action)
	if h.fail {
		return fmt.Errorf("timer rejected %s", action)
	}
	return nil
}

func (h *recordingHandler) HandleReady() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readies++
}

func startTestServer(t *testing.T, handler Handler) (*Server, string) {
	t.Helper()
	s := NewServer(handler, nil, 0)
	port, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s, fmt.Sprintf("ws://127.0.0.1:%d/ws", port)
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func TestServer_CommandGetsAck(t *testing.T) {
	handler := &recordingHandler{}
	_, url := startTestServer(t, handler)
	conn := dial(t, url)

	err := conn.WriteJSON(WSMessage{Kind: "command", Command: &Command{Action: "start"}})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Kind != "ack" || msg.Ack == nil {
		t.Fatalf("expected ack, got %+v", msg)
	}
	if msg.Ack.Action != "start" || msg.Ack.Error != "" {
		t.Errorf("ack: %+v", msg.Ack)
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.commands) != 1 || handler.commands[0] != "start" {
		t.Errorf("commands: %v", handler.commands)
	}
}

func TestServer_CommandErrorInAck(t *testing.T) {
	handler := &recordingHandler{fail: true}
	_, url := startTestServer(t, handler)
	conn := dial(t, url)

	if err := conn.WriteJSON(WSMessage{Kind: "command", Command: &Command{Action: "pause"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Ack == nil || msg.Ack.Error == "" {
		t.Fatalf("expected error ack, got %+v", msg)
	}
}

func TestServer_ReadySignal(t *testing.T) {
	handler := &recordingHandler{}
	_, url := startTestServer(t, handler)
	conn := dial(t, url)

	if err := conn.WriteJSON(WSMessage{Kind: "signal", Signal: &Signal{Name: "ready"}}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		handler.mu.Lock()
		readies := handler.readies
		handler.mu.Unlock()
		if readies == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("ready signal not delivered")
}

func TestServer_BroadcastReachesAllClients(t *testing.T) {
	handler := &recordingHandler{}
	s, url := startTestServer(t, handler)

	conns := []*websocket.Conn{dial(t, url), dial(t, url)}
	// Give the server a moment to register both clients.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s.clientsMu.RLock()
		n := len(s.clients)
		s.clientsMu.RUnlock()
		if n == 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.BroadcastEvent("overlay:state", map[string]int{"elapsedMs": 42})

	for i, conn := range conns {
		msg := readMessage(t, conn)
		if msg.Kind != "event" || msg.Event == nil || msg.Event.Type != "overlay:state" {
			t.Errorf("client %d got %+v", i, msg)
		}
	}
}

func TestClient_SendAfterClose(t *testing.T) {
	c := NewClient("c1", nil)
	if err := c.SendEvent("overlay:state", map[string]int{"elapsedMs": 42}); err != nil {
		t.Fatalf("send on open client: %v", err)
	}

	c.Close()
	c.Close() // idempotent

	// A broadcast racing a disconnect reports an error instead of sending
	// on the closed channel.
	if err := c.SendEvent("overlay:state", nil); err != ErrClientClosed {
		t.Fatalf("send after close = %v, want ErrClientClosed", err)
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	handler := &recordingHandler{}
	s, _ := startTestServer(t, handler)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", s.GetPort()))
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
