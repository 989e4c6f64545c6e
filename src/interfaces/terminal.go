package interfaces

import (
	"context"
	"sync"

	"mt5-gateway/src/models"
)

// -----------------------------------------------------------------------------
// ITerminal is the contract of the upstream trading terminal connection.
// All calls return an explicit error on failure; none panic across this
// boundary.
// -----------------------------------------------------------------------------

type ITerminal interface {

	// Connect establishes the terminal session, retrying per configuration.
	Connect() error

	// -----------------------------------------------------------------------------

	// Disconnect tears down the session and clears all tick subscriptions.
	Disconnect()

	// -----------------------------------------------------------------------------

	// IsConnected reports the current session state.
	IsConnected() bool

	// -----------------------------------------------------------------------------

	// GetAccountInfo returns the current account snapshot.
	GetAccountInfo() (*models.MAccountInfo, error)

	// -----------------------------------------------------------------------------

	// GetSymbolInfo returns instrument metadata, or an error for unknown symbols.
	GetSymbolInfo(symbol string) (*models.MSymbolInfo, error)

	// -----------------------------------------------------------------------------

	// GetCurrentTick returns the latest tick for a symbol.
	GetCurrentTick(symbol string) (*models.MTick, error)

	// -----------------------------------------------------------------------------

	// GetCandles returns up to count bars for the given timeframe, oldest first.
	GetCandles(symbol, timeframe string, count int) ([]models.MRawCandle, error)

	// -----------------------------------------------------------------------------

	// GetOrderBook returns a book of the requested depth for a symbol.
	GetOrderBook(symbol string, depth int) (*models.MOrderBook, error)

	// -----------------------------------------------------------------------------

	// ListAllSymbols returns every instrument the terminal knows.
	ListAllSymbols() ([]string, error)

	// -----------------------------------------------------------------------------

	// SubscribeTicks adds a symbol to the polling set.
	SubscribeTicks(symbol string)

	// UnsubscribeTicks removes a symbol from the polling set.
	UnsubscribeTicks(symbol string)

	// -----------------------------------------------------------------------------

	// Ticks exposes the channel fed by the polling loop.
	Ticks() <-chan models.MTick

	// -----------------------------------------------------------------------------

	// StartPolling launches the tick polling loop.
	// ctx cancellation stops the loop; wg is signaled when it has fully stopped.
	StartPolling(ctx context.Context, wg *sync.WaitGroup)
}
