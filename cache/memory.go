package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Store used when no Redis address is configured.
// A janitor goroutine sweeps expired entries once a minute.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	stop    chan struct{}
}

func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		stop:    make(chan struct{}),
	}
	go m.janitor()
	return m
}

func (m *Memory) GetString(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) SetString(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Close stops the janitor goroutine.
func (m *Memory) Close() {
	close(m.stop)
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for key, entry := range m.entries {
				if now.After(entry.expiresAt) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
