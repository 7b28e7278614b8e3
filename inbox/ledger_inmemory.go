package inbox

import (
	"context"
	"sync"
	"time"
)

// Interface implementation assertion.
var _ Ledger = new(InMemoryLedger)

// InMemoryLedger is a thread-safe, in-memory inbox.Ledger implementation.
type InMemoryLedger struct {
	mx        sync.RWMutex
	processed map[string]time.Time
}

// NewInMemoryLedger creates a new inbox.InMemoryLedger instance.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		processed: make(map[string]time.Time),
	}
}

// IsProcessed implements inbox.Ledger.
func (l *InMemoryLedger) IsProcessed(_ context.Context, messageID string) (bool, error) {
	l.mx.RLock()
	defer l.mx.RUnlock()

	_, ok := l.processed[messageID]

	return ok, nil
}

// MarkProcessed implements inbox.Ledger. Marking the same message
// a second time is a no-op.
func (l *InMemoryLedger) MarkProcessed(_ context.Context, messageID string) error {
	l.mx.Lock()
	defer l.mx.Unlock()

	if _, ok := l.processed[messageID]; !ok {
		l.processed[messageID] = time.Now().UTC()
	}

	return nil
}
