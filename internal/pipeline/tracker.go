package pipeline

import "sync"

// Tracker holds the most recent run result for the status endpoint.
type Tracker struct {
	mu   sync.RWMutex
	last *Result
}

// Record stores a completed result.
func (t *Tracker) Record(res *Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = res
}

// Last returns the most recent result, or nil if no run has completed.
func (t *Tracker) Last() *Result {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}
