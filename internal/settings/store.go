package settings

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Simplici0/threedcost/internal/kvstore"
)

// Store owns the in-memory AppSettings and keeps the stored copy in sync.
// Updates are visible to readers and subscribers before they are persisted.
type Store struct {
	kv  *kvstore.Store
	log *zap.Logger

	mu        sync.RWMutex
	current   AppSettings
	loading   bool
	listeners map[int]func(AppSettings)
	nextID    int

	// persistMu serializes writes; each write stores the latest snapshot.
	persistMu sync.Mutex
}

// New returns a Store holding Defaults until Load runs.
func New(kv *kvstore.Store, log *zap.Logger) *Store {
	return &Store{
		kv:        kv,
		log:       log.Named("settings"),
		current:   Defaults(),
		loading:   true,
		listeners: make(map[int]func(AppSettings)),
	}
}

// Load replaces the in-memory settings with the stored record laid over Defaults.
// Missing or unreadable data leaves the defaults in place.
func (s *Store) Load(ctx context.Context) {
	loaded := Defaults()
	stored := Defaults()
	if s.kv.Decode(ctx, kvstore.KeySettings, &stored) {
		var reset []string
		loaded, reset = sanitize(stored)
		if len(reset) > 0 {
			s.log.Warn("stored settings out of range, using defaults", zap.Strings("fields", reset))
		}
	}

	s.mu.Lock()
	s.current = loaded
	s.loading = false
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, loaded)
}

// IsLoading reports whether Load has not finished yet.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update merges patch into the current settings and persists the result.
// An invalid patch changes nothing. A failed write keeps the new in-memory
// value and returns an error wrapping kvstore.ErrPersist.
func (s *Store) Update(ctx context.Context, patch Patch) (AppSettings, error) {
	const op = "settings.Update"

	if err := patch.Validate(); err != nil {
		return s.Settings(), fmt.Errorf("%s: %w", op, err)
	}

	updated := s.replace(patch.Apply)
	if err := s.persist(ctx); err != nil {
		return updated, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Reset overwrites the settings with Defaults.
func (s *Store) Reset(ctx context.Context) (AppSettings, error) {
	const op = "settings.Reset"

	updated := s.replace(func(AppSettings) AppSettings { return Defaults() })
	if err := s.persist(ctx); err != nil {
		return updated, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Subscribe registers fn to receive every new settings value. Call the
// returned func to stop receiving them.
func (s *Store) Subscribe(fn func(AppSettings)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) replace(next func(AppSettings) AppSettings) AppSettings {
	s.mu.Lock()
	s.current = next(s.current)
	updated := s.current
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, updated)
	return updated
}

func (s *Store) persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	snapshot := s.Settings()
	if err := kvstore.Set(ctx, s.kv, kvstore.KeySettings, snapshot); err != nil {
		s.log.Error("settings kept in memory only", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) listenersLocked() []func(AppSettings) {
	out := make([]func(AppSettings), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(AppSettings), value AppSettings) {
	for _, fn := range listeners {
		fn(value)
	}
}
