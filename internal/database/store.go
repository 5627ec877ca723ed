package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an update keeps losing to concurrent writers
	ErrConflict = errors.New("concurrent update conflict")
)

// Collection keys. Each collection is persisted wholesale as one JSON list.
const (
	UsersKey    = "users"
	FlightsKey  = "flights"
	BookingsKey = "bookings"
)

// Store persists JSON documents under string keys
type Store interface {
	// Load decodes the document stored under key into dest.
	// It returns ErrNotFound when nothing is stored under key.
	Load(ctx context.Context, key string, dest any) error
	// Save replaces the document stored under key
	Save(ctx context.Context, key string, value any) error
	// Update atomically reads the document under key, passes its encoded form
	// to fn (nil when the key is missing) and stores what fn returns.
	// A nil value from fn leaves the key untouched. fn may run more than once.
	Update(ctx context.Context, key string, fn Mutator) error
}

// Mutator computes the next value of a document from its stored encoding
type Mutator func(raw []byte) (any, error)

// UpdateList applies fn to a collection inside Store.Update.
// Returning a nil slice from fn skips the write.
func UpdateList[T any](ctx context.Context, s Store, key string, fn func(items []T) ([]T, error)) error {
	return s.Update(ctx, key, func(raw []byte) (any, error) {
		items := []T{}
		if raw != nil {
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", key, err)
			}
			if items == nil {
				items = []T{}
			}
		}
		next, err := fn(items)
		if err != nil || next == nil {
			return nil, err
		}
		return next, nil
	})
}

// LoadList reads a collection, treating a missing key as an empty list
func LoadList[T any](ctx context.Context, s Store, key string) ([]T, error) {
	var items []T
	if err := s.Load(ctx, key, &items); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []T{}, nil
		}
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// MemoryStore keeps encoded documents in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, key string, dest any) error {
	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	s.mu.Lock()
	s.docs[key] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, key string, fn Mutator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := fn(s.docs[key])
	if err != nil || value == nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	s.docs[key] = data
	return nil
}
