package core

import "sync"

// ── Strategy registry ─────────────────────────────────────────────────────────

// StrategyRegistry is a thread-safe registry of binarization strategies.
// The monochrome converter resolves its strategy here once at construction;
// an unavailable adaptive strategy degrades to the registered fallback.
type StrategyRegistry struct {
	mu         sync.RWMutex
	binarizers map[string]Binarizer
}

// NewStrategyRegistry returns an empty StrategyRegistry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{binarizers: make(map[string]Binarizer)}
}

func (r *StrategyRegistry) RegisterBinarizer(name string, b Binarizer) {
	r.mu.Lock()
	r.binarizers[name] = b
	r.mu.Unlock()
}

func (r *StrategyRegistry) BinarizerFor(name string) (Binarizer, bool) {
	r.mu.RLock()
	b, ok := r.binarizers[name]
	r.mu.RUnlock()
	return b, ok
}
