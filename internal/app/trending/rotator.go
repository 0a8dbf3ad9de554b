package trending

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval matches the widget's original two-second tick.
const DefaultInterval = 2 * time.Second

// Rotator cycles through a fixed list of search terms on an interval. This
// backs the decorative rotating-search widget in the page header; it is
// entirely local and shares no state with the chat sessions.
type Rotator struct {
	items    []string
	interval time.Duration

	mu    sync.RWMutex
	index int
}

// NewRotator builds a rotator over items. A non-positive interval falls back
// to DefaultInterval.
func NewRotator(items []string, interval time.Duration) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Rotator{
		items:    items,
		interval: interval,
	}
}

// Run advances the rotator on its interval until ctx is done.
func (r *Rotator) Run(ctx context.Context) {
	if len(r.items) == 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.advance()
		}
	}
}

func (r *Rotator) advance() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index = (r.index + 1) % len(r.items)
}

// Snapshot is the current widget state.
type Snapshot struct {
	Items []string
	Index int
}

// Snapshot returns the item list and the currently highlighted index.
func (r *Rotator) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]string, len(r.items))
	copy(items, r.items)

	return Snapshot{
		Items: items,
		Index: r.index,
	}
}
