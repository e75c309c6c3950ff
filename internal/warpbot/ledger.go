package warpbot

import "sync"

// Ledger is the dedup set of incident IDs that have already been scheduled
// for a WARP notification. It grows monotonically: entries are never
// evicted, which is acceptable for a bounded process lifetime and small
// identifiers.
type Ledger struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// Add records an incident ID. Returns false if it was already present.
func (l *Ledger) Add(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[id]; ok {
		return false
	}
	l.seen[id] = struct{}{}
	return true
}

// Has reports whether an incident ID has been scheduled.
func (l *Ledger) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[id]
	return ok
}

// Count returns the number of processed incident IDs.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}
