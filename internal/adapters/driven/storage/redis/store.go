// Package redis provides a Redis-backed conversation store, letting several
// server processes share session memory.
//
// Each session is a list of JSON-encoded turns under <prefix><session id>.
// The set <prefix>sessions tracks which sessions hold turns.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ConversationStore = (*Store)(nil)

// DefaultPrefix namespaces all keys written by the store.
const DefaultPrefix = "pdfiq:memory:"

const (
	connectTimeout = 5 * time.Second
	sessionsKey    = "sessions"
)

// Store keeps conversation turns in Redis lists.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL expires idle sessions. Zero keeps them until cleared.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New connects to the Redis server at url (redis://[user:pass@]host:port/db).
func New(ctx context.Context, url string, opts ...Option) (*Store, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: redis url is empty", domain.ErrInvalidInput)
	}
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: parse redis url: %v", domain.ErrInvalidInput, err)
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", options.Addr, err)
	}

	return NewFromClient(client, opts...), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

func (s *Store) setKey() string {
	return s.prefix + sessionsKey
}

// Append pushes a turn and trims the list to the newest maxTurns in one
// MULTI/EXEC block.
func (s *Store) Append(ctx context.Context, sessionID string, turn domain.Turn, maxTurns int) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	key := s.key(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if maxTurns > 0 {
			pipe.LTrim(ctx, key, int64(-maxTurns), -1)
		}
		pipe.SAdd(ctx, s.setKey(), sessionID)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// Turns returns the session's turns, oldest first.
func (s *Store) Turns(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}

	turns := make([]domain.Turn, 0, len(raw))
	for _, item := range raw {
		var turn domain.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear deletes a session's turns.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(sessionID))
		pipe.SRem(ctx, s.setKey(), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Sessions returns the IDs of sessions holding turns, sorted. Sessions
// whose list expired are dropped from the set as they are found.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.setKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	ids := make([]string, 0, len(members))
	for _, id := range members {
		n, err := s.client.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("check session %s: %w", id, err)
		}
		if n == 0 {
			s.client.SRem(ctx, s.setKey(), id)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
