package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// Store keeps the phase record in Redis. This is the bench-rig store:
// on the hardware-in-the-loop bench the ground-support tooling watches
// the same key the controller writes, which a local file cannot offer.
// Flight builds use the file store.
type Store struct {
	client *backend.Client
	key    string
}

// Option configures the store.
type Option func(*Store)

// WithPrefix sets the key prefix (default "nimbus:").
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.key = prefix + "phase_record" }
}

// New creates a Redis-backed store.
func New(addr string, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{Addr: addr})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a store over an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{client: client, key: "nimbus:phase_record"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load retrieves the phase record.
func (s *Store) Load(ctx context.Context) (*domain.PhaseRecord, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrNoImage
		}
		return nil, fmt.Errorf("reading phase record from redis: %w", err)
	}

	var record domain.PhaseRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptImage, err)
	}
	if _, err := domain.ParsePhase(string(record.Phase)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptImage, err)
	}
	return &record, nil
}

// Save replaces the phase record. A Redis SET of a single key is atomic
// by itself, so no temp-and-rename dance is needed here.
func (s *Store) Save(ctx context.Context, record *domain.PhaseRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling phase record: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing phase record to redis: %w", err)
	}
	return nil
}

// Delete removes the phase record.
func (s *Store) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("deleting phase record: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
