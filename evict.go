package pageswap

import "sync"

// evictDispatcher holds the mutable eviction callback. It is its own type
// (rather than a bare field on Swapper) so the mutex it needs doesn't leak
// into the rest of the struct, matching spec §4.H's "mutable, cleared on
// close" note.
type evictDispatcher struct {
	mu sync.RWMutex
	cb EvictionCallback
}

func newEvictDispatcher(cb EvictionCallback) *evictDispatcher {
	return &evictDispatcher{cb: cb}
}

// fire invokes the current callback, if any, with pageID.
func (d *evictDispatcher) fire(pageID int64) {
	d.mu.RLock()
	cb := d.cb
	d.mu.RUnlock()

	if cb != nil {
		cb(pageID)
	}
}

// clear drops the callback. Called by Close so a swapper that outlives its
// enclosing cache doesn't keep it reachable.
func (d *evictDispatcher) clear() {
	d.mu.Lock()
	d.cb = nil
	d.mu.Unlock()
}
