// Package kvstore stores JSON values under string keys on top of a pluggable backend.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Storage keys used by the application.
const (
	KeySettings         = "app_settings"
	KeyMaterialProfiles = "material_profiles"
)

// ErrPersist marks a failed write. Callers keep their in-memory state and
// report the failure without blocking the user.
var ErrPersist = errors.New("persist value")

// Backend is the raw string storage the adapter writes to.
type Backend interface {
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Store reads and writes JSON-encoded values through a Backend.
type Store struct {
	backend Backend
	log     *zap.Logger
}

// New returns a Store that encodes values as JSON over backend.
func New(backend Backend, log *zap.Logger) *Store {
	return &Store{backend: backend, log: log}
}

// Decode reads key into dst. It reports false when the key is absent or the
// stored value cannot be read; such failures are logged, not returned.
func (s *Store) Decode(ctx context.Context, key string, dst any) bool {
	raw, found, err := s.backend.GetItem(ctx, key)
	if err != nil {
		s.log.Warn("read stored value", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn("decode stored value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.backend.RemoveItem(ctx, key); err != nil {
		s.log.Error("remove stored value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key, or the zero value and false.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var v T
	if !s.Decode(ctx, key, &v) {
		var zero T
		return zero, false
	}
	return v, true
}

// Set stores v under key. Errors wrap ErrPersist.
func Set[T any](ctx context.Context, s *Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w %q: %w", ErrPersist, key, err)
	}

	if err := s.backend.SetItem(ctx, key, string(raw)); err != nil {
		s.log.Error("write stored value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w %q: %w", ErrPersist, key, err)
	}
	return nil
}
