package honeypot

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// Session is the per-counterparty state kept by the stateful deployment.
// ScamDetected transitions false→true exactly once and never reverts.
type Session struct {
	ID           string            `json:"id"`
	History      []Message         `json:"history"`
	ScamDetected bool              `json:"scamDetected"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// SessionStore holds conversation records keyed by opaque session id.
// Sessions are created lazily on first reference. Implementations serialize
// access to a single session's mutable fields under concurrent callers and
// must not block unrelated sessions on one another.
type SessionStore interface {
	// GetOrCreate returns a snapshot of the session, creating it with
	// default fields if the id is unseen.
	GetOrCreate(ctx context.Context, id string) (Session, error)
	// AppendMessage appends to the session's history in arrival order.
	AppendMessage(ctx context.Context, id string, msg Message) error
	// MarkScamDetected flips the scam flag on. Idempotent, one-directional.
	MarkScamDetected(ctx context.Context, id string) error
	// GetHistory returns a copy of the session's conversation.
	GetHistory(ctx context.Context, id string) ([]Message, error)
}

const sessionShards = 16

// MemorySessionStore is the default in-process store. Sessions live for the
// process lifetime; eviction policy for v1 is "never". State is sharded by
// key hash so unrelated sessions never contend on one lock.
type MemorySessionStore struct {
	shards [sessionShards]*sessionShard
}

type sessionShard struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemorySessionStore() *MemorySessionStore {
	s := &MemorySessionStore{}
	for i := range s.shards {
		s.shards[i] = &sessionShard{sessions: make(map[string]*Session)}
	}
	return s
}

func (s *MemorySessionStore) shard(id string) *sessionShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%sessionShards]
}

// getOrCreateLocked returns the live session, creating it lazily.
// Caller must hold the shard lock.
func (sh *sessionShard) getOrCreateLocked(id string) *Session {
	sess, ok := sh.sessions[id]
	if !ok {
		sess = &Session{
			ID:        id,
			History:   []Message{},
			Metadata:  map[string]string{},
			CreatedAt: time.Now().UTC(),
		}
		sh.sessions[id] = sess
	}
	return sess
}

func (s *MemorySessionStore) GetOrCreate(_ context.Context, id string) (Session, error) {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	return snapshotSession(sh.getOrCreateLocked(id)), nil
}

func (s *MemorySessionStore) AppendMessage(_ context.Context, id string, msg Message) error {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess := sh.getOrCreateLocked(id)
	sess.History = append(sess.History, msg)
	return nil
}

func (s *MemorySessionStore) MarkScamDetected(_ context.Context, id string) error {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.getOrCreateLocked(id).ScamDetected = true
	return nil
}

func (s *MemorySessionStore) GetHistory(_ context.Context, id string) ([]Message, error) {
	sh := s.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess := sh.getOrCreateLocked(id)
	history := make([]Message, len(sess.History))
	copy(history, sess.History)
	return history, nil
}

func snapshotSession(sess *Session) Session {
	snap := *sess
	snap.History = make([]Message, len(sess.History))
	copy(snap.History, sess.History)
	if sess.Metadata != nil {
		snap.Metadata = make(map[string]string, len(sess.Metadata))
		for k, v := range sess.Metadata {
			snap.Metadata[k] = v
		}
	}
	return snap
}
