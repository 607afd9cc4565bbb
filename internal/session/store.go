// Package session persists dialogue state per customer. Every backend
// serializes updates to the same customer, so two messages arriving close
// together never clobber each other's field merges.
package session

import (
	"context"
	"sync"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// Store is the session persistence contract. Get returns nil without error
// when the customer has no live session. Update loads the session (creating
// one when absent), applies fn under a per-customer lock and persists the
// result; fn returning an error aborts the update without persisting.
type Store interface {
	Get(ctx context.Context, customerID string) (*booking.Session, error)
	Update(ctx context.Context, customerID string, fn func(*booking.Session) error) (*booking.Session, error)
}

// keyedMutex hands out one mutex per key so updates for different customers
// never contend with each other.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m
}
