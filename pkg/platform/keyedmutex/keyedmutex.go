// Package keyedmutex serializes work per key. The status machine and the
// document replace flow both need per-application ordering without blocking
// unrelated applications behind one global lock.
package keyedmutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Mutex is a set of named locks. Locks are created on first use and dropped
// once no goroutine holds or waits on them, so the map does not grow with the
// total number of keys ever seen.
type Mutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Mutex {
	return &Mutex{entries: make(map[string]*entry)}
}

// Lock acquires the lock for key, blocking until it is available.
func (m *Mutex) Lock(key string) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the lock for key.
func (m *Mutex) Unlock(key string) {
	m.mu.Lock()
	e := m.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()

	e.mu.Unlock()
}
