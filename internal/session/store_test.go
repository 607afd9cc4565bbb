package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayritours/booking-assistant/internal/booking"
)

func TestMemoryStoreGetUnknownCustomer(t *testing.T) {
	store := NewMemoryStore(0)

	sess, err := store.Get(context.Background(), "972501234567")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestMemoryStoreUpdateCreatesSession(t *testing.T) {
	store := NewMemoryStore(0)

	sess, err := store.Update(context.Background(), "972501234567", func(s *booking.Session) error {
		s.Language = booking.LanguageHebrew
		s.Stage = booking.StageCollecting
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "972501234567", sess.CustomerID)
	assert.Equal(t, booking.StageCollecting, sess.Stage)

	loaded, err := store.Get(context.Background(), "972501234567")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, booking.LanguageHebrew, loaded.Language)
}

func TestMemoryStoreUpdateErrorDoesNotPersist(t *testing.T) {
	store := NewMemoryStore(0)

	_, err := store.Update(context.Background(), "c1", func(s *booking.Session) error {
		s.Stage = booking.StageDone
		return errors.New("boom")
	})
	require.Error(t, err)

	sess, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestMemoryStoreConcurrentUpdatesSameCustomer(t *testing.T) {
	store := NewMemoryStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(context.Background(), "c1", func(s *booking.Session) error {
				if s.Fields.Passengers == "" {
					s.Fields.Set(booking.FieldPassengers, "1")
				}
				s.Stage = booking.StageCollecting
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "1", sess.Fields.Passengers)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)

	_, err := store.Update(context.Background(), "c1", func(s *booking.Session) error {
		s.Stage = booking.StageCollecting
		return nil
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	sess, err := store.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, sess)

	// An expired session is replaced by a fresh one on the next update.
	fresh, err := store.Update(context.Background(), "c1", func(s *booking.Session) error {
		assert.Equal(t, booking.StageStart, s.Stage)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, booking.StageStart, fresh.Stage)
}

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour, nil)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newTestRedisStore(t)

	sess, err := store.Update(context.Background(), "972501234567", func(s *booking.Session) error {
		s.Language = booking.LanguageEnglish
		s.Fields.Set(booking.FieldDate, "03/08/2025")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "03/08/2025", sess.Fields.Date)

	loaded, err := store.Get(context.Background(), "972501234567")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, booking.LanguageEnglish, loaded.Language)
	assert.Equal(t, "03/08/2025", loaded.Fields.Date)
}

func TestRedisStoreGetUnknownCustomer(t *testing.T) {
	store := newTestRedisStore(t)

	sess, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	store, err := NewFileStore(path, 0)
	require.NoError(t, err)

	_, err = store.Update(context.Background(), "972501234567", func(s *booking.Session) error {
		s.Stage = booking.StageDone
		s.Fields.Set(booking.FieldDestination, "airport")
		return nil
	})
	require.NoError(t, err)

	reopened, err := NewFileStore(path, 0)
	require.NoError(t, err)

	sess, err := reopened.Get(context.Background(), "972501234567")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, booking.StageDone, sess.Stage)
	assert.Equal(t, "airport", sess.Fields.Destination)
}

func TestFileStoreEmptyPath(t *testing.T) {
	_, err := NewFileStore("", 0)
	require.Error(t, err)
}
