package rate

import (
	"sync"
	"time"
)

type Limiter interface {
	Allow(key string, limit int, window time.Duration) (bool, time.Duration)
}

// MemoryLimiter is a fixed-window counter keyed by caller. Windows reset
// wholesale at their deadline; there is no sliding behavior.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int
	resetAt time.Time
	span    time.Duration
}

func NewMemory() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window)}
}

func (m *MemoryLimiter) Allow(key string, limit int, span time.Duration) (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) || w.span != span {
		w = &window{resetAt: now.Add(span), span: span}
		m.windows[key] = w
	}

	if w.count >= limit {
		return false, time.Until(w.resetAt)
	}
	w.count++
	return true, time.Until(w.resetAt)
}

// Prune drops expired windows. Callers that run for a long time with many
// distinct keys should call it periodically.
func (m *MemoryLimiter) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for key, w := range m.windows {
		if now.After(w.resetAt) {
			delete(m.windows, key)
		}
	}
}
