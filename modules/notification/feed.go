package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the feed size used when none is configured.
const DefaultCapacity = 200

// Feed is a bounded, newest-first log of notifications. The oldest entry
// is dropped once the feed is full.
type Feed struct {
	mu       sync.RWMutex
	entries  []Notification
	next     int
	full     bool
	capacity int
}

// NewFeed creates a feed holding at most capacity entries.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{entries: make([]Notification, capacity), capacity: capacity}
}

// Add appends a notification and returns it.
func (f *Feed) Add(kind Kind, subject, message string) Notification {
	n := Notification{
		ID:        uuid.New().String(),
		Kind:      kind,
		Subject:   subject,
		Message:   message,
		CreatedAt: time.Now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[f.next] = n
	f.next = (f.next + 1) % f.capacity
	if f.next == 0 {
		f.full = true
	}
	return n
}

// Len returns the number of stored notifications.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.full {
		return f.capacity
	}
	return f.next
}

// List returns up to limit notifications of kind, newest first. An empty
// kind matches everything and a non-positive limit means no limit.
func (f *Feed) List(kind Kind, limit int) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	size := f.next
	if f.full {
		size = f.capacity
	}

	result := make([]Notification, 0, size)
	for i := 1; i <= size; i++ {
		n := f.entries[(f.next-i+f.capacity)%f.capacity]
		if kind != "" && n.Kind != kind {
			continue
		}
		result = append(result, n)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}
