package interfaces

import (
	"encoding/json"

	"mt5-gateway/src/models"
)

// -----------------------------------------------------------------------------
// IEventEmitter is the outbound half of the transport: deliver an event to one
// client or to everyone currently connected.
// -----------------------------------------------------------------------------

type IEventEmitter interface {

	// EmitTo sends an event to a single client. Returns false if the client is
	// gone or its buffer is full (the event is dropped, never blocks).
	EmitTo(clientID string, event string, data interface{}) bool

	// -----------------------------------------------------------------------------

	// Broadcast sends an event to every connected client.
	Broadcast(event string, data interface{})

	// -----------------------------------------------------------------------------

	// ClientCount returns the number of connected clients.
	ClientCount() int
}

// -----------------------------------------------------------------------------
// IGateway is the inbound half: the transport hands client lifecycle and
// commands to the broadcast engine, and reads status for the HTTP endpoints.
// -----------------------------------------------------------------------------

type IGateway interface {

	// OnClientConnected greets a freshly registered client.
	OnClientConnected(clientID string)

	// OnClientDisconnected releases every subscription the client held.
	OnClientDisconnected(clientID string)

	// -----------------------------------------------------------------------------

	// HandleCommand dispatches one inbound command frame.
	HandleCommand(clientID string, event string, data json.RawMessage)

	// -----------------------------------------------------------------------------

	// UpstreamConnected reports the terminal session state.
	UpstreamConnected() bool

	// WatchedSymbolCount returns how many symbols have at least one subscriber.
	WatchedSymbolCount() int

	// -----------------------------------------------------------------------------

	// Quote refreshes the daily reference for a symbol and returns the current
	// formatted quote, the same path the tick push uses.
	Quote(symbol string) (*models.MQuote, error)
}
