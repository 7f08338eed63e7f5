package material

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Simplici0/threedcost/internal/kvstore"
)

// Store owns the ordered profile list. The whole list is the unit of
// persistence; every mutation rewrites it.
type Store struct {
	kv  *kvstore.Store
	log *zap.Logger

	mu        sync.RWMutex
	profiles  []Profile
	loading   bool
	listeners map[int]func([]Profile)
	nextID    int

	persistMu sync.Mutex
}

// New returns a Store backed by kv. Call Load before use.
func New(kv *kvstore.Store, log *zap.Logger) *Store {
	return &Store{
		kv:        kv,
		log:       log.Named("material"),
		profiles:  []Profile{},
		loading:   true,
		listeners: make(map[int]func([]Profile)),
	}
}

// Load replaces the in-memory list with the stored one, or an empty list.
// Stored profiles that fail validation or repeat an earlier id are dropped.
func (s *Store) Load(ctx context.Context) {
	stored, ok := kvstore.Get[[]Profile](ctx, s.kv, kvstore.KeyMaterialProfiles)
	if !ok || stored == nil {
		stored = []Profile{}
	}
	stored = s.sanitize(stored)

	s.mu.Lock()
	s.profiles = stored
	s.loading = false
	listeners, snapshot := s.listenersLocked(), slices.Clone(stored)
	s.mu.Unlock()

	s.log.Debug("profiles loaded", zap.Int("count", len(snapshot)))
	notify(listeners, snapshot)
}

// IsLoading reports whether Load has not finished yet.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Profiles returns a copy of the list in insertion order.
func (s *Store) Profiles() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.profiles)
}

// Profile looks a profile up by id.
func (s *Store) Profile(id string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.profiles, func(p Profile) bool { return p.ID == id })
}

// Add appends p, assigning a new id when p.ID is empty.
func (s *Store) Add(ctx context.Context, p Profile) (Profile, error) {
	const op = "material.Add"

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	err := s.mutate(func(current []Profile) ([]Profile, error) {
		if lo.ContainsBy(current, func(existing Profile) bool { return existing.ID == p.ID }) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		return append(slices.Clone(current), p), nil
	})
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.persist(ctx); err != nil {
		return p, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Update replaces the profile with p.ID in place.
func (s *Store) Update(ctx context.Context, p Profile) error {
	const op = "material.Update"

	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.mutate(func(current []Profile) ([]Profile, error) {
		_, idx, ok := lo.FindIndexOf(current, func(existing Profile) bool { return existing.ID == p.ID })
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, p.ID)
		}
		next := slices.Clone(current)
		next[idx] = p
		return next, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete removes the profile with id. Deleting an unknown id does nothing.
func (s *Store) Delete(ctx context.Context, id string) error {
	const op = "material.Delete"

	removed := false
	err := s.mutate(func(current []Profile) ([]Profile, error) {
		next := lo.Reject(current, func(p Profile, _ int) bool { return p.ID == id })
		removed = len(next) != len(current)
		if !removed {
			return current, nil
		}
		return next, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !removed {
		s.log.Debug("delete of unknown profile ignored", zap.String("profile_id", id))
		return nil
	}

	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Subscribe registers fn to receive the list after every change.
func (s *Store) Subscribe(fn func([]Profile)) (cancel func()) {
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

// mutate computes the next list from the latest in-memory list and installs
// it before any write is attempted.
func (s *Store) mutate(next func([]Profile) ([]Profile, error)) error {
	s.mu.Lock()
	updated, err := next(s.profiles)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	changed := !slices.Equal(updated, s.profiles)
	s.profiles = updated
	listeners, snapshot := s.listenersLocked(), slices.Clone(updated)
	s.mu.Unlock()

	if changed {
		notify(listeners, snapshot)
	}
	return nil
}

func (s *Store) sanitize(stored []Profile) []Profile {
	seen := make(map[string]struct{}, len(stored))
	kept := make([]Profile, 0, len(stored))
	for _, p := range stored {
		if p.ID == "" {
			s.log.Warn("dropping stored profile without id", zap.String("name", p.Name))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			s.log.Warn("dropping stored profile with duplicate id", zap.String("profile_id", p.ID))
			continue
		}
		if err := p.Validate(); err != nil {
			s.log.Warn("dropping invalid stored profile", zap.String("profile_id", p.ID), zap.Error(err))
			continue
		}
		seen[p.ID] = struct{}{}
		kept = append(kept, p)
	}
	return kept
}

func (s *Store) persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	snapshot := s.Profiles()
	if err := kvstore.Set(ctx, s.kv, kvstore.KeyMaterialProfiles, snapshot); err != nil {
		s.log.Error("profiles kept in memory only", zap.Int("count", len(snapshot)), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) listenersLocked() []func([]Profile) {
	return lo.Values(s.listeners)
}

func notify(listeners []func([]Profile), profiles []Profile) {
	for _, fn := range listeners {
		fn(slices.Clone(profiles))
	}
}
