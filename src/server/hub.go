package server

import (
	"encoding/json"
	"net/http"
	"time"

	"mt5-gateway/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. The clients map is also read by
// EmitTo/Broadcast from engine goroutines, hence the mutex alongside the
// channels.
func (s *GatewayServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clientsMu.Lock()
			s.clients[client.id] = client
			s.clientsMu.Unlock()

			s.Gateway.OnClientConnected(client.id)

		case client := <-s.unregister:
			s.clientsMu.Lock()
			if _, ok := s.clients[client.id]; ok {
				delete(s.clients, client.id)
				close(client.send)
			}
			s.clientsMu.Unlock()

			s.Gateway.OnClientDisconnected(client.id)
		}
	}
}

// -----------------------------------------------------------------------------
// Event Emitter Implementation
// -----------------------------------------------------------------------------

// EmitTo sends an event to one client. Returns false if the client is gone
// or its buffer is full; never blocks. The send happens under the read lock:
// send channels are only closed under the write lock, so a concurrent prune
// or unregister can never close the channel mid-send.
func (s *GatewayServer) EmitTo(clientID string, event string, data interface{}) bool {
	frame := models.MEvent{Event: event, Data: data}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	client, ok := s.clients[clientID]
	if !ok {
		return false
	}

	select {
	case client.send <- frame:
		return true
	default:
		// Client too slow; the next Broadcast will prune it
		s.Logger.Warning("Send buffer full for client %s, dropping %s", clientID, event)
		return false
	}
}

// -----------------------------------------------------------------------------

// Broadcast sends an event to every connected client. Slow clients are
// disconnected so the hub never blocks.
func (s *GatewayServer) Broadcast(event string, data interface{}) {
	frame := models.MEvent{Event: event, Data: data}

	s.clientsMu.Lock()
	for id, client := range s.clients {
		select {
		case client.send <- frame:
		default:
			delete(s.clients, id)
			close(client.send)
			s.Logger.Warning("Client %s too slow, disconnected", id)
		}
	}
	s.clientsMu.Unlock()
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	return len(s.clients)
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan models.MEvent, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *GatewayServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil || cmd.Event == "" {
		s.Logger.Info("Invalid frame from client %s: %v", client.id, err)
		s.EmitTo(client.id, "error", models.MErrorEvent{
			Message:   "Invalid message format",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	s.Gateway.HandleCommand(client.id, cmd.Event, cmd.Data)
}
