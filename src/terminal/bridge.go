package terminal

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mt5-gateway/src/interfaces"
	"mt5-gateway/src/logger"
	"mt5-gateway/src/models"
)

// -----------------------------------------------------------------------------
// BridgeTerminal talks to the MT5 terminal through its HTTP bridge.
// It implements interfaces.ITerminal and is the only component that touches
// the upstream connection.
// -----------------------------------------------------------------------------

type BridgeTerminal struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger

	connected atomic.Bool

	// Polling state
	subMu      sync.RWMutex
	subscribed map[string]struct{}
	lastTicks  map[string]models.MTick
	ticks      chan models.MTick
}

// -----------------------------------------------------------------------------

func NewBridgeTerminal(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *BridgeTerminal {
	return &BridgeTerminal{
		Config:     cfg,
		Network:    netMgr,
		Logger:     log,
		subscribed: make(map[string]struct{}),
		lastTicks:  make(map[string]models.MTick),
		// Buffered so a burst of polled symbols never stalls the poll loop
		ticks: make(chan models.MTick, 256),
	}
}

// -----------------------------------------------------------------------------
// Session lifecycle
// -----------------------------------------------------------------------------

// Connect establishes the bridge session, retrying per configuration.
func (t *BridgeTerminal) Connect() error {
	attempts := t.Config.Terminal.ConnectAttempts
	delay := time.Duration(t.Config.Terminal.ConnectRetryDelay) * time.Second

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := t.ping(); err != nil {
			lastErr = err
			t.Logger.Warning("Terminal bridge ping failed (attempt %d/%d): %v", attempt, attempts, err)
			if attempt < attempts {
				time.Sleep(delay)
			}
			continue
		}

		t.connected.Store(true)

		// The session is only usable if the account is readable
		account, err := t.GetAccountInfo()
		if err != nil {
			t.connected.Store(false)
			lastErr = fmt.Errorf("failed to get account info: %w", err)
			if attempt < attempts {
				time.Sleep(delay)
			}
			continue
		}

		t.Logger.Info("Connected to terminal bridge. Account: %d", account.Login)
		t.Logger.Info("Balance: %.2f, Equity: %.2f", account.Balance, account.Equity)
		return nil
	}

	return fmt.Errorf("terminal connect failed after %d attempts: %w", attempts, lastErr)
}

// -----------------------------------------------------------------------------

// Disconnect drops the session and clears all tick subscriptions.
func (t *BridgeTerminal) Disconnect() {
	if !t.connected.Swap(false) {
		return
	}

	t.subMu.Lock()
	t.subscribed = make(map[string]struct{})
	t.lastTicks = make(map[string]models.MTick)
	t.subMu.Unlock()

	t.Logger.Info("Disconnected from terminal bridge")
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) IsConnected() bool {
	return t.connected.Load()
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) ping() error {
	body, err := t.Network.Get(t.Config.Terminal.Endpoint+"/ping", nil)
	if err != nil {
		return err
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("invalid ping response: %w", err)
	}
	if resp.Status != "ok" {
		return fmt.Errorf("bridge unhealthy: status=%s", resp.Status)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Data retrieval
// -----------------------------------------------------------------------------

// get fetches and decodes a bridge resource, flipping the connected flag on
// network failure so the health loop notices and reconnects.
func (t *BridgeTerminal) get(path string, params map[string]string, out interface{}) error {
	if !t.IsConnected() {
		return fmt.Errorf("not connected to terminal")
	}

	body, err := t.Network.Get(t.Config.Terminal.Endpoint+path, params)
	if err != nil {
		t.connected.Store(false)
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid bridge response for %s: %w", path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) GetAccountInfo() (*models.MAccountInfo, error) {
	var account models.MAccountInfo
	if err := t.get("/account", nil, &account); err != nil {
		return nil, fmt.Errorf("error getting account info: %w", err)
	}
	return &account, nil
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) GetSymbolInfo(symbol string) (*models.MSymbolInfo, error) {
	var info models.MSymbolInfo
	if err := t.get("/symbols/"+symbol, nil, &info); err != nil {
		return nil, fmt.Errorf("symbol %s not found: %w", symbol, err)
	}
	return &info, nil
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) GetCurrentTick(symbol string) (*models.MTick, error) {
	var tick models.MTick
	if err := t.get("/tick/"+symbol, nil, &tick); err != nil {
		return nil, fmt.Errorf("error getting tick for %s: %w", symbol, err)
	}
	tick.Symbol = symbol
	return &tick, nil
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) GetCandles(symbol, timeframe string, count int) ([]models.MRawCandle, error) {
	if !t.isSupportedTimeframe(timeframe) {
		return nil, fmt.Errorf("unsupported timeframe: %s", timeframe)
	}

	var candles []models.MRawCandle
	params := map[string]string{
		"timeframe": timeframe,
		"count":     fmt.Sprintf("%d", count),
	}
	if err := t.get("/candles/"+symbol, params, &candles); err != nil {
		return nil, fmt.Errorf("error getting candles for %s: %w", symbol, err)
	}
	return candles, nil
}

// -----------------------------------------------------------------------------

// GetOrderBook synthesizes a book around the current tick. The terminal has
// no depth feed for most symbols, so levels fan out from bid/ask with
// linearly decaying volumes.
func (t *BridgeTerminal) GetOrderBook(symbol string, depth int) (*models.MOrderBook, error) {
	tick, err := t.GetCurrentTick(symbol)
	if err != nil {
		return nil, err
	}

	spread := tick.Ask - tick.Bid

	bids := make([]models.MOrderBookLevel, 0, depth)
	asks := make([]models.MOrderBookLevel, 0, depth)

	for i := 0; i < depth; i++ {
		volume := 1000 * float64(depth-i) / float64(depth)
		bids = append(bids, models.MOrderBookLevel{
			Price:  tick.Bid - spread*float64(i)*0.1,
			Volume: volume,
		})
		asks = append(asks, models.MOrderBookLevel{
			Price:  tick.Ask + spread*float64(i)*0.1,
			Volume: volume,
		})
	}

	return &models.MOrderBook{
		Symbol: symbol,
		Time:   time.Now().UTC().Format(time.RFC3339),
		Bids:   bids,
		Asks:   asks,
		Spread: spread,
	}, nil
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) ListAllSymbols() ([]string, error) {
	var resp struct {
		Symbols []string `json:"symbols"`
	}
	if err := t.get("/symbols", nil, &resp); err != nil {
		return nil, fmt.Errorf("error getting symbols: %w", err)
	}
	return resp.Symbols, nil
}

// -----------------------------------------------------------------------------

func (t *BridgeTerminal) isSupportedTimeframe(timeframe string) bool {
	for _, tf := range t.Config.Market.SupportedTimeframes {
		if tf == timeframe {
			return true
		}
	}
	return false
}
