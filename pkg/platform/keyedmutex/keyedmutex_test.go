package keyedmutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutexSerializesPerKey(t *testing.T) {
	m := New()
	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("app-1")
			counter++
			m.Unlock("app-1")
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestMutexDropsIdleEntries(t *testing.T) {
	m := New()
	m.Lock("a")
	m.Unlock("a")
	m.Lock("b")

	m.mu.Lock()
	_, hasA := m.entries["a"]
	_, hasB := m.entries["b"]
	m.mu.Unlock()

	assert.False(t, hasA, "released key should be dropped")
	assert.True(t, hasB, "held key must stay")
	m.Unlock("b")
}

func TestMutexIndependentKeysDoNotBlock(t *testing.T) {
	m := New()
	m.Lock("a")

	done := make(chan struct{})
	go func() {
		m.Lock("b")
		m.Unlock("b")
		close(done)
	}()
	<-done
	m.Unlock("a")
}
