package prefs

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"recshelf/internal/models"
)

// memStorage is an in-memory Storage for tests.
type memStorage struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStorage) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	m.sets++
	return nil
}

func (m *memStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStorage) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

func TestLoad_DefaultsWhenEmpty(t *testing.T) {
	store := New(newMemStorage(), 0)

	prefs := store.Load(uuid.New(), "inbox:moviestv")
	want := models.DefaultViewPreferences()
	if prefs.SortBy != want.SortBy || prefs.ItemsPerPage != want.ItemsPerPage {
		t.Errorf("Load() = %+v, want defaults %+v", prefs, want)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := New(newMemStorage(), 0)
	userID := uuid.New()

	saved := models.ViewPreferences{
		GenreFilters: []string{"sci-fi", "horror"},
		SortBy:       "title",
		ItemsPerPage: 50,
	}
	if err := store.Save(userID, "inbox:moviestv", saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := store.Load(userID, "inbox:moviestv")
	if got.SortBy != "title" || got.ItemsPerPage != 50 || len(got.GenreFilters) != 2 {
		t.Errorf("Load() = %+v, want %+v", got, saved)
	}
}

func TestSave_ScopedPerUserAndView(t *testing.T) {
	store := New(newMemStorage(), 0)
	alice, bob := uuid.New(), uuid.New()

	_ = store.Save(alice, "inbox:music", models.ViewPreferences{SortBy: "artist", ItemsPerPage: 10, GenreFilters: []string{models.GenreAll}})

	if got := store.Load(bob, "inbox:music"); got.SortBy == "artist" {
		t.Error("preferences leaked across users")
	}
	if got := store.Load(alice, "inbox:books"); got.SortBy == "artist" {
		t.Error("preferences leaked across views")
	}
}

func TestLoad_CorruptBlobFallsBack(t *testing.T) {
	backend := newMemStorage()
	store := New(backend, 0)
	userID := uuid.New()

	_ = backend.Set("viewprefs:"+userID.String()+":inbox:games", []byte("{not json"), 0)

	got := store.Load(userID, "inbox:games")
	if got.ItemsPerPage != models.DefaultViewPreferences().ItemsPerPage {
		t.Errorf("Load() = %+v, want defaults on corrupt data", got)
	}
}

func TestSave_DebounceKeepsFinalValue(t *testing.T) {
	backend := newMemStorage()
	store := New(backend, 20*time.Millisecond)
	userID := uuid.New()

	// A burst of changes: only the last one matters.
	for _, perPage := range []int{10, 25, 50} {
		_ = store.Save(userID, "inbox:moviestv", models.ViewPreferences{
			GenreFilters: []string{models.GenreAll},
			SortBy:       "sent",
			ItemsPerPage: perPage,
		})
	}

	// Before the window closes the pending value is already visible.
	if got := store.Load(userID, "inbox:moviestv"); got.ItemsPerPage != 50 {
		t.Errorf("Load() during debounce = %d, want pending 50", got.ItemsPerPage)
	}

	deadline := time.After(500 * time.Millisecond)
	for backend.setCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("debounced write never landed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if backend.setCount() != 1 {
		t.Errorf("sets = %d, want the burst collapsed into 1", backend.setCount())
	}
	if got := store.Load(userID, "inbox:moviestv"); got.ItemsPerPage != 50 {
		t.Errorf("final value = %d, want 50 (trailing edge must not drop the last change)", got.ItemsPerPage)
	}
}

func TestFlush_WritesPendingImmediately(t *testing.T) {
	backend := newMemStorage()
	store := New(backend, time.Hour)
	userID := uuid.New()

	_ = store.Save(userID, "inbox:music", models.ViewPreferences{
		GenreFilters: []string{"jazz"},
		SortBy:       "artist",
		ItemsPerPage: 30,
	})
	store.Flush()

	if backend.setCount() != 1 {
		t.Fatalf("sets = %d, want 1 after Flush", backend.setCount())
	}
	if got := store.Load(userID, "inbox:music"); got.SortBy != "artist" {
		t.Errorf("Load() after Flush = %+v", got)
	}
}

func TestReset(t *testing.T) {
	store := New(newMemStorage(), 0)
	userID := uuid.New()

	_ = store.Save(userID, "inbox:books", models.ViewPreferences{SortBy: "author", ItemsPerPage: 5, GenreFilters: []string{"fantasy"}})
	if err := store.Reset(userID, "inbox:books"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	got := store.Load(userID, "inbox:books")
	if got.SortBy != models.DefaultViewPreferences().SortBy {
		t.Errorf("Load() after Reset = %+v, want defaults", got)
	}
}
