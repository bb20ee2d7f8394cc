package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/mehmetcc/resirent/internal/token"
	"go.uber.org/zap"
)

// DefaultKey is the durable slot holding the serialized token pair.
const DefaultKey = "authTokens"

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// Store holds the current token pair and the claims decoded from it. Claims
// are re-derived under the lock whenever the pair changes.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	key     string
	logger  *zap.Logger

	pair   *token.Pair
	claims *token.Claims
}

func NewStore(storage Storage, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open restores the session persisted under the store key. An unreadable
// slot is dropped and leaves the store anonymous.
func (s *Store) Open(ctx context.Context) error {
	raw, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, ErrSlotEmpty) {
		return nil
	}
	if err != nil {
		return err
	}

	var pair token.Pair
	err = json.Unmarshal(raw, &pair)
	if err == nil && pair.Access == "" {
		err = ErrSlotCorrupt
	}
	if err != nil {
		s.logger.Warn("discarding corrupt session slot", zap.String("key", s.key), zap.Error(err))
		if err := s.storage.Delete(ctx, s.key); err != nil {
			return err
		}
		return nil
	}

	s.mu.Lock()
	s.swap(&pair)
	s.mu.Unlock()
	return nil
}

// Set persists pair and then makes it current. On a storage error the
// previous session stays in place.
func (s *Store) Set(ctx context.Context, pair token.Pair) error {
	raw, err := json.Marshal(pair)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Save(ctx, s.key, raw); err != nil {
		return err
	}
	s.swap(&pair)
	return nil
}

// Clear drops the in-memory session and erases the durable copy.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair, s.claims = nil, nil
	return s.storage.Delete(ctx, s.key)
}

func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out Session
	if s.pair != nil {
		p := *s.pair
		out.Pair = &p
	}
	if s.claims != nil {
		c := *s.claims
		out.Claims = &c
	}
	return out
}

func (s *Store) Close() error {
	if c, ok := s.storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// swap must be called with mu held.
func (s *Store) swap(pair *token.Pair) {
	s.pair = pair
	claims, err := token.Decode(pair.Access)
	if err != nil {
		s.logger.Debug("access token not decodable, identity is anonymous", zap.Error(err))
		claims = nil
	}
	s.claims = claims
}
