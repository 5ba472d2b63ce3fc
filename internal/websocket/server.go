// internal/websocket/server.go
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local surfaces only, the listener is loopback-bound
	},
}

// Handler receives decoded client traffic
type Handler interface {
	// HandleCommand executes a timer control command.
	HandleCommand(action string, payload json.RawMessage) error
	// HandleReady runs once per client readiness signal.
	HandleReady()
}

// Server accepts overlay and dashboard connections and fans events out to
// them
type Server struct {
	port       int
	authKey    string
	handler    Handler
	api        http.Handler
	clients    map[string]*Client
	clientsMu  sync.RWMutex
	httpServer *http.Server
}

// NewServer creates a new WebSocket server. api, if non-nil, is mounted
// under /api. port 0 picks a random free port.
func NewServer(handler Handler, api http.Handler, port int) *Server {
	authKey := os.Getenv("POE_WATCHER_AUTH_KEY")

	return &Server{
		port:    port,
		authKey: authKey,
		handler: handler,
		api:     api,
		clients: make(map[string]*Client),
	}
}

// Start starts the server on loopback and returns the bound port
func (s *Server) Start(ctx context.Context) (int, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return 0, fmt.Errorf("failed to bind port: %w", err)
	}

	s.port = listener.Addr().(*net.TCPAddr).Port

	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.api != nil {
		r.PathPrefix("/api/").Handler(http.StripPrefix("/api", s.api))
	}

	s.httpServer = &http.Server{Handler: handlers.CombinedLoggingHandler(os.Stdout, r)}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	return s.port, nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.Unlock()

	return s.httpServer.Shutdown(ctx)
}

// handleHealth is the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleWebSocket upgrades and registers a connection
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.authKey != "" {
		authHeader := r.Header.Get("X-Auth-Key")
		if authHeader != s.authKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	clientID := uuid.New().String()
	client := NewClient(clientID, conn)

	s.clientsMu.Lock()
	s.clients[clientID] = client
	s.clientsMu.Unlock()

	go client.WritePump()

	s.readPump(client)
}

// readPump reads messages from the client until the connection drops
func (s *Server) readPump(client *Client) {
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		s.clientsMu.Unlock()
		client.Conn.Close()
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		s.handleMessage(client, message)
	}
}

// handleMessage dispatches one decoded envelope
func (s *Server) handleMessage(client *Client, message []byte) {
	var msg WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Invalid message format: %v", err)
		return
	}

	switch {
	case msg.Kind == "command" && msg.Command != nil:
		s.handleCommand(client, msg.Command)
	case msg.Kind == "signal" && msg.Signal != nil:
		s.handleSignal(msg.Signal)
	}
}

// handleCommand runs a command and acks it back to the issuer
func (s *Server) handleCommand(client *Client, cmd *Command) {
	var errMsg string
	if err := s.handler.HandleCommand(cmd.Action, cmd.Payload); err != nil {
		errMsg = err.Error()
	}

	if err := client.SendAck(cmd.Action, errMsg); err != nil {
		log.Printf("Failed to send ack: %v", err)
	}
}

// handleSignal processes a no-reply notification
func (s *Server) handleSignal(sig *Signal) {
	switch sig.Name {
	case "ready":
		s.handler.HandleReady()
	default:
		log.Printf("Unknown signal: %s", sig.Name)
	}
}

// BroadcastEvent sends an event to every connected client
func (s *Server) BroadcastEvent(eventType string, payload interface{}) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		client.SendEvent(eventType, payload)
	}
}

// GetPort returns the bound port
func (s *Server) GetPort() int {
	return s.port
}
