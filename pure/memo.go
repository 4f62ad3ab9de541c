// Package pure memoizes pure functions in bounded tables.
package pure

import (
	"sync"
	"sync/atomic"
)

// Memo is a bounded concurrent table made of two generations. Stores go to
// the head generation; once it holds maxSize entries the older generation is
// dropped and a fresh head takes its place. Loads fall back to the older
// generation, so an entry survives at least maxSize later stores.
type Memo[K comparable, V any] struct {
	mu      sync.RWMutex
	gens    [2]*sync.Map
	headIdx int
	size    atomic.Uint32
	maxSize uint32
}

func NewMemo[K comparable, V any](maxSize uint32) *Memo[K, V] {
	if maxSize == 0 {
		panic("maxSize should be greater than 0")
	}
	return &Memo[K, V]{
		gens:    [2]*sync.Map{{}, {}},
		maxSize: maxSize,
	}
}

func (m *Memo[K, V]) Load(key K) (V, bool) {
	m.mu.RLock()
	head, tail := m.gens[m.headIdx], m.gens[1-m.headIdx]
	m.mu.RUnlock()

	v, ok := head.Load(key)
	if !ok {
		if v, ok = tail.Load(key); !ok {
			var zero V
			return zero, false
		}
	}
	return v.(V), true
}

func (m *Memo[K, V]) Store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.size.Load() >= m.maxSize {
		m.headIdx = 1 - m.headIdx
		m.gens[m.headIdx] = &sync.Map{}
		m.size.Store(0)
	}
	m.gens[m.headIdx].Store(key, value)
	m.size.Add(1)
}
