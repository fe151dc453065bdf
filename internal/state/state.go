// Package state provides an observable key/value store with bounded change
// history and per-key subscriber notification.
//
// The store is designed for single-goroutine use from the dashboard's update
// loop, matching how all dashboard state is owned by one logical thread.
// Notification is synchronous and ordered by subscription order; a Set issued
// from inside a listener simply recurses depth-first.
package state

import "time"

// DefaultHistorySize is the default number of change records retained per store.
const DefaultHistorySize = 100

// Change records a single key transition.
type Change struct {
	Key       string
	OldValue  interface{}
	NewValue  interface{}
	Timestamp time.Time
}

// Listener receives the new and old value for a key it subscribed to.
type Listener func(newValue, oldValue interface{})

// subscription pairs a listener with a stable id so unsubscribe can remove
// exactly one registration even when the same func is registered twice.
type subscription struct {
	id       int
	listener Listener
}

// Store is an observable key/value store.
type Store struct {
	values      map[string]interface{}
	subscribers map[string][]subscription
	history     []Change // circular, oldest dropped past historySize
	historySize int
	nextSubID   int
	now         func() time.Time
}

// NewStore creates a store with the given history cap.
// Non-positive caps fall back to DefaultHistorySize.
func NewStore(historySize int) *Store {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Store{
		values:      make(map[string]interface{}),
		subscribers: make(map[string][]subscription),
		historySize: historySize,
		now:         time.Now,
	}
}

// Get returns the current value for a key, or nil if unset.
func (s *Store) Get(key string) interface{} {
	return s.values[key]
}

// Set stores a value, records the transition, and synchronously notifies all
// subscribers registered for the key in subscription order.
func (s *Store) Set(key string, value interface{}) {
	oldValue := s.values[key]
	s.values[key] = value

	s.history = append(s.history, Change{
		Key:       key,
		OldValue:  oldValue,
		NewValue:  value,
		Timestamp: s.now(),
	})
	if len(s.history) > s.historySize {
		s.history = s.history[len(s.history)-s.historySize:]
	}

	// Copy the subscriber slice so listeners that subscribe or unsubscribe
	// during dispatch don't affect this notification round.
	subs := make([]subscription, len(s.subscribers[key]))
	copy(subs, s.subscribers[key])
	for _, sub := range subs {
		sub.listener(value, oldValue)
	}
}

// Subscribe registers a listener for changes to a key and returns an
// unsubscribe func. Unsubscribing twice is harmless.
func (s *Store) Subscribe(key string, listener Listener) func() {
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[key] = append(s.subscribers[key], subscription{id: id, listener: listener})

	return func() {
		subs := s.subscribers[key]
		for i, sub := range subs {
			if sub.id == id {
				s.subscribers[key] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// History returns the most recent limit changes for a key, oldest first.
// A non-positive limit returns all retained changes for the key.
func (s *Store) History(key string, limit int) []Change {
	var matched []Change
	for _, c := range s.history {
		if c.Key == key {
			matched = append(matched, c)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}
