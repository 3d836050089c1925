package honeypot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisSessionStore keeps sessions in redis with a TTL, so a honeypot fleet
// can share state and idle sessions expire instead of living for the process
// lifetime. Writes are load-modify-save per operation: callers are expected
// to be single-writer per session id (one inbound request at a time per
// counterparty), matching the upstream platform's delivery model.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("honeypot: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("honeypot.internal.sessions"),
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisSessionStore) GetOrCreate(ctx context.Context, id string) (Session, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.get_or_create")
	defer span.End()

	sess, err := s.load(ctx, id)
	if err != nil {
		span.RecordError(err)
		return Session{}, err
	}
	if sess == nil {
		fresh := Session{
			ID:        id,
			History:   []Message{},
			Metadata:  map[string]string{},
			CreatedAt: time.Now().UTC(),
		}
		if err := s.save(ctx, fresh); err != nil {
			span.RecordError(err)
			return Session{}, err
		}
		return fresh, nil
	}
	return *sess, nil
}

func (s *RedisSessionStore) AppendMessage(ctx context.Context, id string, msg Message) error {
	ctx, span := s.tracer.Start(ctx, "sessions.append_message")
	defer span.End()

	sess, err := s.GetOrCreate(ctx, id)
	if err != nil {
		return err
	}
	sess.History = append(sess.History, msg)
	if err := s.save(ctx, sess); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *RedisSessionStore) MarkScamDetected(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "sessions.mark_scam")
	defer span.End()

	sess, err := s.GetOrCreate(ctx, id)
	if err != nil {
		return err
	}
	if sess.ScamDetected {
		return nil
	}
	sess.ScamDetected = true
	if err := s.save(ctx, sess); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *RedisSessionStore) GetHistory(ctx context.Context, id string) ([]Message, error) {
	sess, err := s.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.History, nil
}

func (s *RedisSessionStore) load(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("honeypot: failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("honeypot: failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) save(ctx context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("honeypot: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("honeypot: failed to persist session: %w", err)
	}
	return nil
}
