// Package prefs persists per-view list preferences in a key-value store.
// Keys are scoped per user and view id; only the slice of state meant to
// survive sessions is stored (genre filters, sort mode, page size).
package prefs

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"recshelf/internal/models"
)

// Storage is the key-value backend. The Redis storage from the gofiber
// storage collection satisfies it; tests use an in-memory map.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

// Store reads and writes view preferences. Writes are debounced on the
// trailing edge: a burst of changes produces one write carrying the final
// value, and the final value is never dropped.
type Store struct {
	storage  Storage
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*pendingWrite
}

type pendingWrite struct {
	timer *time.Timer
	value models.ViewPreferences
}

// New creates a preference store. A zero debounce writes synchronously.
func New(storage Storage, debounce time.Duration) *Store {
	return &Store{
		storage:  storage,
		debounce: debounce,
		pending:  make(map[string]*pendingWrite),
	}
}

func key(userID uuid.UUID, viewID string) string {
	return fmt.Sprintf("viewprefs:%s:%s", userID, viewID)
}

// Load returns the stored preferences for a view, or the defaults when
// nothing is stored yet. A corrupt blob also falls back to defaults rather
// than failing the page.
func (s *Store) Load(userID uuid.UUID, viewID string) models.ViewPreferences {
	k := key(userID, viewID)

	// A debounced write that hasn't landed yet is still the truth.
	s.mu.Lock()
	if p, ok := s.pending[k]; ok {
		v := p.value
		s.mu.Unlock()
		return v
	}
	s.mu.Unlock()

	data, err := s.storage.Get(k)
	if err != nil || len(data) == 0 {
		return models.DefaultViewPreferences()
	}

	var prefs models.ViewPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return models.DefaultViewPreferences()
	}
	if prefs.ItemsPerPage < 1 {
		prefs.ItemsPerPage = models.DefaultViewPreferences().ItemsPerPage
	}
	if len(prefs.GenreFilters) == 0 {
		prefs.GenreFilters = []string{models.GenreAll}
	}
	return prefs
}

// Save schedules a write of the given preferences. Repeated saves within
// the debounce window collapse into one write of the last value.
func (s *Store) Save(userID uuid.UUID, viewID string, prefs models.ViewPreferences) error {
	k := key(userID, viewID)

	if s.debounce <= 0 {
		return s.write(k, prefs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[k]; ok {
		p.value = prefs
		p.timer.Reset(s.debounce)
		return nil
	}

	p := &pendingWrite{value: prefs}
	p.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		current, ok := s.pending[k]
		if !ok || current != p {
			s.mu.Unlock()
			return
		}
		delete(s.pending, k)
		value := current.value
		s.mu.Unlock()
		_ = s.write(k, value)
	})
	s.pending[k] = p
	return nil
}

// Flush writes all pending preferences immediately. Called on shutdown so
// trailing debounced writes are not lost.
func (s *Store) Flush() {
	s.mu.Lock()
	writes := make(map[string]models.ViewPreferences, len(s.pending))
	for k, p := range s.pending {
		p.timer.Stop()
		writes[k] = p.value
		delete(s.pending, k)
	}
	s.mu.Unlock()

	for k, v := range writes {
		_ = s.write(k, v)
	}
}

// Reset deletes the stored preferences for a view; the next Load returns
// defaults.
func (s *Store) Reset(userID uuid.UUID, viewID string) error {
	k := key(userID, viewID)

	s.mu.Lock()
	if p, ok := s.pending[k]; ok {
		p.timer.Stop()
		delete(s.pending, k)
	}
	s.mu.Unlock()

	return s.storage.Delete(k)
}

func (s *Store) write(k string, prefs models.ViewPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.storage.Set(k, data, 0)
}
