package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// Values is the raw content of one session, keyed by name.
type Values map[string]json.RawMessage

// Store persists session values by token.
type Store interface {
	// Load returns the values saved under token. ok is false when the
	// session does not exist or has expired.
	Load(ctx context.Context, token string) (values Values, ok bool, err error)
	Save(ctx context.Context, token string, values Values, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// RedisStore keeps each session as one JSON string with a TTL.
type RedisStore struct {
	client radix.Client
	prefix string
}

func NewRedisStore(client radix.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "storefront:session:"}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

func (s *RedisStore) Load(_ context.Context, token string) (Values, bool, error) {
	var raw []byte
	mn := radix.MaybeNil{Rcv: &raw}
	if err := s.client.Do(radix.Cmd(&mn, "GET", s.key(token))); err != nil {
		return nil, false, fmt.Errorf("session: redis get: %w", err)
	}
	if mn.Nil {
		return nil, false, nil
	}
	var values Values
	if err := json.Unmarshal(raw, &values); err != nil {
		// Unreadable payloads are treated as an expired session.
		_ = s.client.Do(radix.Cmd(nil, "DEL", s.key(token)))
		return nil, false, nil
	}
	return values, true, nil
}

func (s *RedisStore) Save(_ context.Context, token string, values Values, ttl time.Duration) error {
	body, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	if err := s.client.Do(radix.FlatCmd(nil, "SET", s.key(token), body, "EX", seconds)); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(_ context.Context, token string) error {
	if err := s.client.Do(radix.Cmd(nil, "DEL", s.key(token))); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

// sweepInterval bounds how often Save scans for expired entries.
const sweepInterval = time.Minute

// MemoryStore is a process-local Store for development and tests. Expired
// entries are dropped on Load and by a periodic sweep in Save.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, token string) (Values, bool, error) {
	s.mu.Lock()
	e, ok := s.entries[token]
	if ok && !s.now().Before(e.expiresAt) {
		delete(s.entries, token)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	var values Values
	if err := json.Unmarshal(e.body, &values); err != nil {
		return nil, false, fmt.Errorf("session: decode: %w", err)
	}
	return values, true, nil
}

func (s *MemoryStore) Save(_ context.Context, token string, values Values, ttl time.Duration) error {
	// Stored encoded so callers cannot alias a saved session.
	body, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	s.mu.Lock()
	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweepLocked(now)
	}
	s.entries[token] = memoryEntry{body: body, expiresAt: now.Add(ttl)}
	s.mu.Unlock()
	return nil
}

// sweepLocked drops every expired entry. s.mu must be held.
func (s *MemoryStore) sweepLocked(now time.Time) {
	for token, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, token)
		}
	}
	s.lastSweep = now
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
	return nil
}
