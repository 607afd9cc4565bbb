package session

import (
	"context"
	"sync"
	"time"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// MemoryStore keeps sessions in a process-local map. Suitable for single
// instance deployments and tests; loses state on restart.
type MemoryStore struct {
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]*booking.Session

	updates *keyedMutex
}

// NewMemoryStore builds an in-memory store. A non-positive ttl disables
// expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*booking.Session),
		updates:  newKeyedMutex(),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, customerID string) (*booking.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[customerID]
	if !ok || s.expired(sess) {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (s *MemoryStore) Update(_ context.Context, customerID string, fn func(*booking.Session) error) (*booking.Session, error) {
	lock := s.updates.lock(customerID)
	defer lock.Unlock()

	s.mu.RLock()
	stored, ok := s.sessions[customerID]
	s.mu.RUnlock()

	var sess *booking.Session
	if ok && !s.expired(stored) {
		copied := *stored
		sess = &copied
	} else {
		sess = booking.NewSession(customerID)
	}

	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.sessions[customerID] = sess
	s.mu.Unlock()

	copied := *sess
	return &copied, nil
}

func (s *MemoryStore) expired(sess *booking.Session) bool {
	return s.ttl > 0 && time.Since(sess.UpdatedAt) > s.ttl
}
