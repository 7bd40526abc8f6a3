package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps subscriptions and pending checkout sessions.
type Store interface {
	Subscription(ctx context.Context, uid string) (Subscription, bool, error)
	SaveSubscription(ctx context.Context, uid string, sub Subscription) error
	// SaveSession records a checkout session for uid that expires after ttl.
	SaveSession(ctx context.Context, id, uid string, ttl time.Duration) error
	// TakeSession returns and deletes a session, so each one completes once.
	TakeSession(ctx context.Context, id string) (string, bool, error)
}

type session struct {
	uid     string
	expires time.Time
}

// MemoryStore is a Store that lives as long as the process.
type MemoryStore struct {
	mu            sync.Mutex
	now           func() time.Time
	subscriptions map[string]Subscription
	sessions      map[string]session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:           time.Now,
		subscriptions: make(map[string]Subscription),
		sessions:      make(map[string]session),
	}
}

func (s *MemoryStore) Subscription(_ context.Context, uid string) (Subscription, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[uid]
	return sub, ok, nil
}

func (s *MemoryStore) SaveSubscription(_ context.Context, uid string, sub Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[uid] = sub
	return nil
}

func (s *MemoryStore) SaveSession(_ context.Context, id, uid string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session{uid: uid, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) TakeSession(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return "", false, nil
	}
	delete(s.sessions, id)
	if !s.now().Before(sess.expires) {
		return "", false, nil
	}
	return sess.uid, true, nil
}

// RedisStore is a Store backed by Redis. Subscriptions are JSON values
// under "<prefix>sub:<uid>", sessions plain values under "<prefix>cs:<id>"
// with a TTL.
type RedisStore struct {
	db     redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store using keys that start with prefix.
func NewRedisStore(db redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{db: db, prefix: prefix}
}

func (s *RedisStore) Subscription(ctx context.Context, uid string) (Subscription, bool, error) {
	data, err := s.db.Get(ctx, s.prefix+"sub:"+uid).Bytes()
	if errors.Is(err, redis.Nil) {
		return Subscription{}, false, nil
	}
	if err != nil {
		return Subscription{}, false, errors.Join(ErrStore, err)
	}
	var sub Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return Subscription{}, false, errors.Join(ErrStore, err)
	}
	return sub, true, nil
}

func (s *RedisStore) SaveSubscription(ctx context.Context, uid string, sub Subscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	if err := s.db.Set(ctx, s.prefix+"sub:"+uid, data, 0).Err(); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (s *RedisStore) SaveSession(ctx context.Context, id, uid string, ttl time.Duration) error {
	if err := s.db.Set(ctx, s.prefix+"cs:"+id, uid, ttl).Err(); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (s *RedisStore) TakeSession(ctx context.Context, id string) (string, bool, error) {
	uid, err := s.db.GetDel(ctx, s.prefix+"cs:"+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Join(ErrStore, err)
	}
	return uid, true, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
