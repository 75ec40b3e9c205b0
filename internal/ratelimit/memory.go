package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepEvery = 1024

// MemoryStore keeps sliding logs in process memory. Buckets are not shared
// across instances.
type MemoryStore struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	maxAge map[string]time.Duration
	calls  int
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hits:   make(map[string][]time.Time),
		maxAge: make(map[string]time.Duration),
	}
}

func (m *MemoryStore) Hit(_ context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.calls%sweepEvery == 0 {
		m.sweep(now)
	}

	kept := prune(m.hits[key], now.Add(-window))
	kept = append(kept, now)
	m.hits[key] = kept
	m.maxAge[key] = window
	return int64(len(kept)), nil
}

// Len reports the number of live buckets.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}

func (m *MemoryStore) sweep(now time.Time) {
	for key, hits := range m.hits {
		kept := prune(hits, now.Add(-m.maxAge[key]))
		if len(kept) == 0 {
			delete(m.hits, key)
			delete(m.maxAge, key)
			continue
		}
		m.hits[key] = kept
	}
}

// prune drops hits at or before floor. Hits are appended in time order.
func prune(hits []time.Time, floor time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(floor) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}
