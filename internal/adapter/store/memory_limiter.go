package store

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a per-key sliding window held in process memory. Stale
// timestamps are pruned on access and by Sweep.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recent := m.prune(m.hits[key], now)
	if len(recent) >= m.limit {
		m.hits[key] = recent
		return false, nil
	}
	m.hits[key] = append(recent, now)
	return true, nil
}

// Sweep drops keys whose whole window has expired.
func (m *MemoryLimiter) Sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, ts := range m.hits {
		recent := m.prune(ts, now)
		if len(recent) == 0 {
			delete(m.hits, key)
			continue
		}
		m.hits[key] = recent
	}
}

// Run sweeps every interval until ctx is done.
func (m *MemoryLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

// Len is the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}

// prune keeps timestamps strictly inside (now-window, now]. Timestamps are
// appended in order, so the first kept index bounds the rest.
func (m *MemoryLimiter) prune(ts []time.Time, now time.Time) []time.Time {
	i := 0
	for i < len(ts) && now.Sub(ts[i]) >= m.window {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0:0], ts[i:]...)
}
