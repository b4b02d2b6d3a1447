package store

import (
	"sync"
	"time"
)

// subscriberBuffer is the channel buffer size given to each subscriber.
const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore provides thread-safe storage with a publish-subscribe mechanism
// for real-time updates. Observations are kept newest first and are never
// removed.
//
// Subscribers receive updates via buffered channels (buffer size 100). Updates
// are sent non-blocking; if a subscriber's buffer is full, the update is dropped
// for that subscriber to prevent blocking the polling loop.
type MemoryStore struct {
	mu           sync.RWMutex
	observations []Observation
	subscribers  map[chan Observation]struct{}
	subMu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] seeded with history.
//
// history must be ordered newest first. The slice is copied.
func NewMemoryStore(history []Observation) *MemoryStore {
	observations := make([]Observation, len(history))
	copy(observations, history)
	return &MemoryStore{
		observations: observations,
		subscribers:  make(map[chan Observation]struct{}),
	}
}

// Record prepends a new [Observation] and notifies all subscribers.
func (m *MemoryStore) Record(value string, at time.Time) (Observation, error) {
	m.mu.Lock()
	obs := m.prependLocked(value, at)
	m.mu.Unlock()

	m.notifySubscribers(obs)
	return obs, nil
}

// prependLocked builds the next observation and puts it at the head of the
// sequence. Caller must hold m.mu.
func (m *MemoryStore) prependLocked(value string, at time.Time) Observation {
	var newest int64
	if len(m.observations) > 0 {
		newest = m.observations[0].ID
	}

	obs := Observation{
		ID:        nextID(at, newest),
		Value:     value,
		Timestamp: at.Format(TimestampLayout),
	}

	m.observations = append([]Observation{obs}, m.observations...)
	return obs
}

// GetAll returns a snapshot of all observations, newest first.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore) GetAll() []Observation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Observation, len(m.observations))
	copy(results, m.observations)
	return results
}

// Latest returns the newest observation.
func (m *MemoryStore) Latest() (Observation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.observations) == 0 {
		return Observation{}, false
	}
	return m.observations[0], true
}

// Len returns the number of stored observations.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.observations)
}

// Subscribe creates a new subscription and returns a channel for receiving updates.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Observation {
	ch := make(chan Observation, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// updates will be sent. Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Observation) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the observation to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the message
// is dropped for that subscriber rather than blocking the record path.
func (m *MemoryStore) notifySubscribers(obs Observation) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- obs:
		default:
			// subscriber is slow, drop the message
		}
	}
}
