package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// RedisStore persists sessions as JSON values with a rolling TTL. Updates for
// the same customer are serialized with an in-process lock; the service runs
// as a single instance, so a distributed lock is not needed.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer

	updates *keyedMutex
}

func NewRedisStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("tayri.internal.session")
	}
	return &RedisStore{
		redis:   client,
		ttl:     ttl,
		tracer:  tracer,
		updates: newKeyedMutex(),
	}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Get(ctx context.Context, customerID string) (*booking.Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(customerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load session: %w", err)
	}

	var sess booking.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Update(ctx context.Context, customerID string, fn func(*booking.Session) error) (*booking.Session, error) {
	lock := s.updates.lock(customerID)
	defer lock.Unlock()

	ctx, span := s.tracer.Start(ctx, "session.update")
	defer span.End()

	sess, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = booking.NewSession(customerID)
	}

	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(customerID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to persist session: %w", err)
	}
	return sess, nil
}

func sessionKey(customerID string) string {
	return fmt.Sprintf("session:%s", customerID)
}
