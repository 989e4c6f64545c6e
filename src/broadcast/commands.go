package broadcast

import (
	"encoding/json"
	"fmt"
	"time"

	"mt5-gateway/src/models"
)

// -----------------------------------------------------------------------------
// Client lifecycle and command dispatch. Every inbound frame lands here from
// the websocket read pump; errors go back to the sender as error events.
// -----------------------------------------------------------------------------

func (e *Engine) OnClientConnected(clientID string) {
	e.Emitter.EmitTo(clientID, "connected", models.MConnectedEvent{
		Sid:       clientID,
		Timestamp: nowISO(),
		Message:   "Connected to MT5 gateway",
	})
	e.Logger.Info("Client connected: %s (%d total)", clientID, e.Emitter.ClientCount())
}

// -----------------------------------------------------------------------------

func (e *Engine) OnClientDisconnected(clientID string) {
	stopped := e.Registry.RemoveClient(clientID)
	for _, symbol := range stopped {
		e.Terminal.UnsubscribeTicks(symbol)
	}
	e.Logger.Info("Client disconnected: %s (%d symbols released)", clientID, len(stopped))
}

// -----------------------------------------------------------------------------

func (e *Engine) HandleCommand(clientID string, event string, data json.RawMessage) {
	switch event {
	case "subscribe":
		e.handleSubscribe(clientID, data)
	case "unsubscribe":
		e.handleUnsubscribe(clientID, data)
	case "get_symbols":
		e.handleGetSymbols(clientID)
	case "get_candles":
		e.handleGetCandles(clientID, data)
	case "get_order_book":
		e.handleGetOrderBook(clientID, data)
	case "get_account_info":
		e.handleGetAccountInfo(clientID)
	case "ping":
		e.handlePing(clientID)
	default:
		e.sendError(clientID, fmt.Sprintf("Unknown command: %s", event))
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) sendError(clientID, message string) {
	e.Emitter.EmitTo(clientID, "error", models.MErrorEvent{
		Message:   message,
		Timestamp: nowISO(),
	})
}

// -----------------------------------------------------------------------------
// subscribe / unsubscribe
// -----------------------------------------------------------------------------

func (e *Engine) handleSubscribe(clientID string, data json.RawMessage) {
	var req models.MSubscribeRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Symbol == "" {
		e.sendError(clientID, "Symbol is required")
		return
	}

	if _, err := e.Terminal.GetSymbolInfo(req.Symbol); err != nil {
		e.sendError(clientID, fmt.Sprintf("Symbol %s not found", req.Symbol))
		return
	}

	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = e.Config.Market.DefaultTimeframe
	}

	if first := e.Registry.Subscribe(clientID, req.Symbol); first {
		e.refreshDailyReference(req.Symbol)
		e.Terminal.SubscribeTicks(req.Symbol)
		e.Logger.Info("Symbol feed started: %s", req.Symbol)
	}

	e.Emitter.EmitTo(clientID, "subscribed", models.MSubscribedEvent{
		Symbol:    req.Symbol,
		Timeframe: timeframe,
		Timestamp: nowISO(),
		Message:   fmt.Sprintf("Subscribed to %s", req.Symbol),
	})

	e.sendInitialData(clientID, req.Symbol, timeframe)
}

// -----------------------------------------------------------------------------

func (e *Engine) handleUnsubscribe(clientID string, data json.RawMessage) {
	var req models.MUnsubscribeRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Symbol == "" {
		e.sendError(clientID, "Symbol is required")
		return
	}

	removed, last := e.Registry.Unsubscribe(clientID, req.Symbol)
	if !removed {
		e.sendError(clientID, fmt.Sprintf("Not subscribed to %s", req.Symbol))
		return
	}
	if last {
		e.Terminal.UnsubscribeTicks(req.Symbol)
		e.Logger.Info("Symbol feed stopped: %s", req.Symbol)
	}

	e.Emitter.EmitTo(clientID, "unsubscribed", models.MUnsubscribedEvent{
		Symbol:    req.Symbol,
		Timestamp: nowISO(),
		Message:   fmt.Sprintf("Unsubscribed from %s", req.Symbol),
	})
}

// -----------------------------------------------------------------------------

// sendInitialData pushes a current tick, recent candles and an indicator
// snapshot to a fresh subscriber so clients render immediately.
func (e *Engine) sendInitialData(clientID, symbol, timeframe string) {
	if tick, err := e.Terminal.GetCurrentTick(symbol); err == nil {
		quote := e.Processor.FormatTick(tick)
		e.Emitter.EmitTo(clientID, "tick", models.MTickEvent{
			Symbol:    symbol,
			Tick:      *quote,
			Timestamp: nowISO(),
		})
	}

	candles, err := e.Terminal.GetCandles(symbol, timeframe, 100)
	if err != nil {
		return
	}

	e.Emitter.EmitTo(clientID, "candles", models.MCandlesEvent{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   e.Processor.FormatCandles(candles),
		Count:     len(candles),
		Timestamp: nowISO(),
	})

	if snapshot := e.Analyzer.Snapshot(symbol, candles); snapshot != nil {
		e.Emitter.EmitTo(clientID, "indicators", models.MIndicatorsEvent{
			Symbol:     symbol,
			Indicators: *snapshot,
			Timestamp:  nowISO(),
		})
	}
}

// -----------------------------------------------------------------------------
// Request/response commands
// -----------------------------------------------------------------------------

func (e *Engine) handleGetSymbols(clientID string) {
	cacheKey := "symbols"
	if cached, ok := e.Processor.Cache.Get(cacheKey); ok {
		if symbols, ok := cached.([]string); ok {
			e.emitSymbols(clientID, symbols)
			return
		}
	}

	symbols, err := e.Terminal.ListAllSymbols()
	if err != nil {
		e.sendError(clientID, "Failed to get symbols")
		return
	}

	e.Processor.Cache.Set(cacheKey, symbols)
	e.emitSymbols(clientID, symbols)
}

func (e *Engine) emitSymbols(clientID string, symbols []string) {
	e.Emitter.EmitTo(clientID, "symbols", models.MSymbolsEvent{
		Symbols:   symbols,
		Count:     len(symbols),
		Timestamp: nowISO(),
	})
}

// -----------------------------------------------------------------------------

func (e *Engine) handleGetCandles(clientID string, data json.RawMessage) {
	var req models.MCandlesRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Symbol == "" {
		e.sendError(clientID, "Symbol is required")
		return
	}

	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = e.Config.Market.DefaultTimeframe
	}

	count := req.Count
	if count <= 0 {
		count = 100
	}
	if count > e.Config.Market.MaxCandles {
		count = e.Config.Market.MaxCandles
	}

	cacheKey := fmt.Sprintf("candles:%s:%s:%d", req.Symbol, timeframe, count)
	if cached, ok := e.Processor.Cache.Get(cacheKey); ok {
		if event, ok := cached.(models.MCandlesEvent); ok {
			e.Emitter.EmitTo(clientID, "candles", event)
			return
		}
	}

	candles, err := e.Terminal.GetCandles(req.Symbol, timeframe, count)
	if err != nil {
		e.sendError(clientID, fmt.Sprintf("Failed to get candles for %s: %v", req.Symbol, err))
		return
	}

	event := models.MCandlesEvent{
		Symbol:    req.Symbol,
		Timeframe: timeframe,
		Candles:   e.Processor.FormatCandles(candles),
		Count:     len(candles),
		Timestamp: nowISO(),
	}
	e.Processor.Cache.Set(cacheKey, event)
	e.Emitter.EmitTo(clientID, "candles", event)
}

// -----------------------------------------------------------------------------

func (e *Engine) handleGetOrderBook(clientID string, data json.RawMessage) {
	var req models.MOrderBookRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Symbol == "" {
		e.sendError(clientID, "Symbol is required")
		return
	}

	depth := req.Depth
	if depth <= 0 || depth > 20 {
		depth = 10
	}

	book, err := e.Terminal.GetOrderBook(req.Symbol, depth)
	if err != nil {
		e.sendError(clientID, fmt.Sprintf("Failed to get order book for %s: %v", req.Symbol, err))
		return
	}

	e.Emitter.EmitTo(clientID, "order_book", models.MOrderBookEvent{
		Symbol:    req.Symbol,
		OrderBook: *e.Processor.FormatOrderBook(book),
		Timestamp: nowISO(),
	})
}

// -----------------------------------------------------------------------------

func (e *Engine) handleGetAccountInfo(clientID string) {
	account, err := e.Terminal.GetAccountInfo()
	if err != nil {
		e.sendError(clientID, "Failed to get account info")
		return
	}

	e.Emitter.EmitTo(clientID, "account_info", models.MAccountEvent{
		Account:   *account,
		Timestamp: nowISO(),
	})
}

// -----------------------------------------------------------------------------

func (e *Engine) handlePing(clientID string) {
	e.Emitter.EmitTo(clientID, "pong", models.MPongEvent{
		Timestamp:  nowISO(),
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
