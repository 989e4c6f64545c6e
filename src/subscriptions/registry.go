package subscriptions

import "sync"

// -----------------------------------------------------------------------------
// Registry tracks which client watches which symbol, in both directions.
// It reports first/last transitions so callers can start and stop upstream
// feeds exactly once per symbol.
// -----------------------------------------------------------------------------

type Registry struct {
	mu              sync.RWMutex
	symbolToClients map[string]map[string]struct{}
	clientToSymbols map[string]map[string]struct{}
}

// -----------------------------------------------------------------------------

func NewRegistry() *Registry {
	return &Registry{
		symbolToClients: make(map[string]map[string]struct{}),
		clientToSymbols: make(map[string]map[string]struct{}),
	}
}

// -----------------------------------------------------------------------------

// Subscribe registers clientID for symbol. Returns true when this is the
// first subscriber to the symbol. Re-subscribing is a no-op.
func (r *Registry) Subscribe(clientID, symbol string) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.symbolToClients[symbol]
	if !ok {
		clients = make(map[string]struct{})
		r.symbolToClients[symbol] = clients
		first = true
	}
	clients[clientID] = struct{}{}

	symbols, ok := r.clientToSymbols[clientID]
	if !ok {
		symbols = make(map[string]struct{})
		r.clientToSymbols[clientID] = symbols
	}
	symbols[symbol] = struct{}{}

	return first
}

// -----------------------------------------------------------------------------

// Unsubscribe removes clientID from symbol. removed is false when the client
// was not subscribed; last is true when the symbol has no subscribers left.
func (r *Registry) Unsubscribe(clientID, symbol string) (removed, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.symbolToClients[symbol]
	if !ok {
		return false, false
	}
	if _, ok := clients[clientID]; !ok {
		return false, false
	}

	delete(clients, clientID)
	if len(clients) == 0 {
		delete(r.symbolToClients, symbol)
		last = true
	}

	if symbols, ok := r.clientToSymbols[clientID]; ok {
		delete(symbols, symbol)
		if len(symbols) == 0 {
			delete(r.clientToSymbols, clientID)
		}
	}

	return true, last
}

// -----------------------------------------------------------------------------

// RemoveClient drops every subscription of clientID and returns the symbols
// that are left without subscribers.
func (r *Registry) RemoveClient(clientID string) (stopped []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	symbols, ok := r.clientToSymbols[clientID]
	if !ok {
		return nil
	}

	for symbol := range symbols {
		clients := r.symbolToClients[symbol]
		delete(clients, clientID)
		if len(clients) == 0 {
			delete(r.symbolToClients, symbol)
			stopped = append(stopped, symbol)
		}
	}

	delete(r.clientToSymbols, clientID)
	return stopped
}

// -----------------------------------------------------------------------------

// SubscribersOf returns a copy of the client set watching symbol.
func (r *Registry) SubscribersOf(symbol string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := r.symbolToClients[symbol]
	out := make([]string, 0, len(clients))
	for id := range clients {
		out = append(out, id)
	}
	return out
}

// -----------------------------------------------------------------------------

// SymbolsOf returns a copy of the symbol set watched by clientID.
func (r *Registry) SymbolsOf(clientID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	symbols := r.clientToSymbols[clientID]
	out := make([]string, 0, len(symbols))
	for s := range symbols {
		out = append(out, s)
	}
	return out
}

// -----------------------------------------------------------------------------

// Symbols returns all symbols with at least one subscriber.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.symbolToClients))
	for s := range r.symbolToClients {
		out = append(out, s)
	}
	return out
}

// -----------------------------------------------------------------------------

// SymbolCount returns the number of symbols with at least one subscriber.
func (r *Registry) SymbolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.symbolToClients)
}
