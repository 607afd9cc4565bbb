package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// FileStore keeps sessions in memory and mirrors every update into a JSON
// snapshot on disk, written atomically so a crash mid-write never leaves a
// truncated file. State survives restarts without an external store.
type FileStore struct {
	path string
	ttl  time.Duration

	mu       sync.RWMutex
	sessions map[string]*booking.Session

	updates *keyedMutex
}

// NewFileStore loads the snapshot at path if one exists and returns a store
// backed by it. A non-positive ttl disables expiry.
func NewFileStore(path string, ttl time.Duration) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("session: file store path cannot be empty")
	}
	s := &FileStore{
		path:     path,
		ttl:      ttl,
		sessions: make(map[string]*booking.Session),
		updates:  newKeyedMutex(),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("session: failed to read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.sessions); err != nil {
		return fmt.Errorf("session: failed to decode snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, customerID string) (*booking.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[customerID]
	if !ok || s.expired(sess) {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (s *FileStore) Update(_ context.Context, customerID string, fn func(*booking.Session) error) (*booking.Session, error) {
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
	err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	copied := *sess
	return &copied, nil
}

// snapshotLocked writes the full session map to disk. Callers must hold mu.
func (s *FileStore) snapshotLocked() error {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("session: failed to marshal snapshot: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("session: failed to write snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) expired(sess *booking.Session) bool {
	return s.ttl > 0 && time.Since(sess.UpdatedAt) > s.ttl
}
