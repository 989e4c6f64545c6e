package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mt5-gateway/src/analysis"
	"mt5-gateway/src/interfaces"
	"mt5-gateway/src/logger"
	"mt5-gateway/src/marketdata"
	"mt5-gateway/src/models"
	"mt5-gateway/src/subscriptions"
	"mt5-gateway/src/utils"
)

// -----------------------------------------------------------------------------
// Engine owns the gateway's data flow: it consumes terminal ticks, fans them
// out to subscribed clients, runs the periodic broadcast and health loops,
// and dispatches inbound client commands. It implements interfaces.IGateway.
// -----------------------------------------------------------------------------

type Engine struct {
	Config    *models.MConfig
	Terminal  interfaces.ITerminal
	Registry  *subscriptions.Registry
	Processor *marketdata.Processor
	Analyzer  *analysis.Analyzer
	Calendar  *utils.TradingCalendar
	Emitter   interfaces.IEventEmitter
	Logger    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	dailyMu         sync.Mutex
	lastDailyUpdate string // YYYY-MM-DD of the last reference refresh
}

// -----------------------------------------------------------------------------

func NewEngine(
	cfg *models.MConfig,
	terminal interfaces.ITerminal,
	registry *subscriptions.Registry,
	processor *marketdata.Processor,
	analyzer *analysis.Analyzer,
	cal *utils.TradingCalendar,
	log *logger.Logger,
) *Engine {
	return &Engine{
		Config:    cfg,
		Terminal:  terminal,
		Registry:  registry,
		Processor: processor,
		Analyzer:  analyzer,
		Calendar:  cal,
		Logger:    log,
	}
}

// SetEmitter wires the transport in. Must be called before Start.
func (e *Engine) SetEmitter(emitter interfaces.IEventEmitter) {
	e.Emitter = emitter
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func (e *Engine) Start(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.Terminal.StartPolling(e.ctx, &e.wg)

	e.wg.Add(3)
	go e.tickLoop()
	go e.broadcastLoop()
	go e.healthLoop()

	e.Logger.Info("Broadcast engine started")
}

// -----------------------------------------------------------------------------

// Stop cancels all loops, waits for them and closes the terminal session.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
	e.Terminal.Disconnect()
	e.Logger.Info("Broadcast engine stopped")
}

// -----------------------------------------------------------------------------
// Status (read by the HTTP endpoints)
// -----------------------------------------------------------------------------

func (e *Engine) UpstreamConnected() bool {
	return e.Terminal.IsConnected()
}

func (e *Engine) WatchedSymbolCount() int {
	return e.Registry.SymbolCount()
}

// -----------------------------------------------------------------------------

// Quote returns the current formatted quote for symbol, refreshing its daily
// reference first so the change figures match what subscribers see.
func (e *Engine) Quote(symbol string) (*models.MQuote, error) {
	if _, err := e.Terminal.GetSymbolInfo(symbol); err != nil {
		return nil, fmt.Errorf("symbol %s not found", symbol)
	}

	e.refreshDailyReference(symbol)

	tick, err := e.Terminal.GetCurrentTick(symbol)
	if err != nil {
		return nil, err
	}
	return e.Processor.FormatTick(tick), nil
}

// -----------------------------------------------------------------------------
// Tick fan-out
// -----------------------------------------------------------------------------

func (e *Engine) tickLoop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case tick := <-e.Terminal.Ticks():
			e.handleTick(&tick)
		}
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) handleTick(tick *models.MTick) {
	subscribers := e.Registry.SubscribersOf(tick.Symbol)
	if len(subscribers) == 0 {
		return
	}

	quote := e.Processor.FormatTick(tick)
	e.Processor.Cache.Set("tick:"+tick.Symbol, quote)

	event := models.MTickEvent{
		Symbol:    tick.Symbol,
		Tick:      *quote,
		Timestamp: nowISO(),
	}
	for _, clientID := range subscribers {
		e.Emitter.EmitTo(clientID, "tick", event)
	}
}

// -----------------------------------------------------------------------------
// Periodic broadcast loop: market summary, account update, daily rollover
// -----------------------------------------------------------------------------

func (e *Engine) broadcastLoop() {
	defer e.wg.Done()

	interval := time.Duration(e.Config.Broadcast.IntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			// Rollover bookkeeping is independent of connected clients
			e.updateDailyReferencesIfNeeded()

			if e.Emitter.ClientCount() == 0 {
				continue
			}
			e.broadcastMarketSummary()
			e.broadcastAccountUpdate()
		}
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) broadcastMarketSummary() {
	symbols := e.Registry.Symbols()
	if len(symbols) == 0 {
		return
	}

	snapshots := make([]models.MIndicators, 0, len(symbols))
	for _, symbol := range symbols {
		candles, err := e.Terminal.GetCandles(symbol, e.Config.Market.DefaultTimeframe, 100)
		if err != nil {
			e.Logger.Debug("Summary skip %s: %v", symbol, err)
			continue
		}
		if snapshot := e.Analyzer.Snapshot(symbol, candles); snapshot != nil {
			snapshots = append(snapshots, *snapshot)

			e.Emitter.Broadcast("indicators", models.MIndicatorsEvent{
				Symbol:     symbol,
				Indicators: *snapshot,
				Timestamp:  nowISO(),
			})
		}
	}

	if len(snapshots) == 0 {
		return
	}

	summary := e.Analyzer.MarketSummary(snapshots)
	e.Emitter.Broadcast("market_summary", models.MMarketSummaryEvent{
		Summary:   *summary,
		Timestamp: nowISO(),
	})
}

// -----------------------------------------------------------------------------

func (e *Engine) broadcastAccountUpdate() {
	account, err := e.Terminal.GetAccountInfo()
	if err != nil {
		e.Logger.Debug("Account update skipped: %v", err)
		return
	}

	e.Emitter.Broadcast("account_update", models.MAccountEvent{
		Account:   *account,
		Timestamp: nowISO(),
	})
}

// -----------------------------------------------------------------------------
// Daily reference rollover
// -----------------------------------------------------------------------------

// updateDailyReferencesIfNeeded refreshes every watched symbol's daily
// reference once per calendar day. Non-trading days are skipped so the
// reference keeps pointing at the last completed session.
func (e *Engine) updateDailyReferencesIfNeeded() {
	today := time.Now().UTC().Format("2006-01-02")

	e.dailyMu.Lock()
	if e.lastDailyUpdate == today {
		e.dailyMu.Unlock()
		return
	}
	first := e.lastDailyUpdate == ""
	e.dailyMu.Unlock()

	if !first && !e.Calendar.IsTradingDay(time.Now()) {
		return
	}

	for _, symbol := range e.Registry.Symbols() {
		e.refreshDailyReference(symbol)
	}

	e.dailyMu.Lock()
	e.lastDailyUpdate = today
	e.dailyMu.Unlock()

	e.Logger.Info("Daily reference prices refreshed")
}

// -----------------------------------------------------------------------------

// refreshDailyReference installs the close of the last completed daily bar
// as the symbol's reference price.
func (e *Engine) refreshDailyReference(symbol string) {
	candles, err := e.Terminal.GetCandles(symbol, "D1", 3)
	if err != nil || len(candles) < 2 {
		return
	}

	// candles come oldest first; the final bar is the running session
	previousClose := candles[len(candles)-2].Close
	e.Processor.Refs.SetDailyReference(symbol, previousClose)
}

// -----------------------------------------------------------------------------
// Health loop: status push plus upstream reconnect
// -----------------------------------------------------------------------------

func (e *Engine) healthLoop() {
	defer e.wg.Done()

	interval := time.Duration(e.Config.Broadcast.HealthIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.Emitter.Broadcast("health", models.MHealthEvent{
				UpstreamConnected: e.Terminal.IsConnected(),
				ClientsConnected:  e.Emitter.ClientCount(),
				Timestamp:         nowISO(),
			})

			if !e.Terminal.IsConnected() {
				e.Logger.Warning("Terminal connection lost, reconnecting")
				if err := e.Terminal.Connect(); err != nil {
					e.Logger.Error("Reconnect failed: %v", err)
				} else {
					e.Logger.Info("Terminal reconnected")
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
