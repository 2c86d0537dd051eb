package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const fileExtension = ".json"

// Common cache errors.
var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrExpired    = errors.New("cache entry expired")
	ErrInvalidKey = errors.New("cache key cannot be empty")
	ErrDisabled   = errors.New("cache is disabled")
)

// Store is a TTL key/value store for JSON records.
type Store interface {
	Get(key string) (json.RawMessage, error)
	Set(key string, data json.RawMessage) error
	Delete(key string) error
}

// Key derives a filesystem-safe cache key from its parts.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// clock is swapped in tests.
type clock func() time.Time

// FileStore keeps one JSON file per entry in a directory. It is safe for
// concurrent use.
type FileStore struct {
	directory string
	enabled   bool
	ttl       time.Duration
	now       clock

	mu sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the store, making directory if needed. A disabled
// store answers every call with ErrDisabled.
func NewFileStore(directory string, enabled bool, ttl time.Duration) (*FileStore, error) {
	if !enabled {
		return &FileStore{now: time.Now}, nil
	}
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if _, err := NewTTL(ttl); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileStore{directory: directory, enabled: true, ttl: ttl, now: time.Now}, nil
}

// Get returns the data stored under key.
func (s *FileStore) Get(key string) (json.RawMessage, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if entry.ExpiredAt(s.now()) {
		return nil, ErrExpired
	}
	return entry.Data, nil
}

// Set stores data under key, replacing any previous entry.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	encoded, err := json.MarshalIndent(NewEntry(key, data, s.ttl, s.now()), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so readers never see a partial file.
	target := s.path(key)
	tmp := target + ".tmp"
	if err = os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err = os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Delete removes key. Missing entries are not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache file: %w", err)
	}
	return nil
}

// Prune deletes expired and unreadable entries and returns how many were removed.
func (s *FileStore) Prune() (int, error) {
	if !s.enabled {
		return 0, ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.directory)
	if err != nil {
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}

	removed := 0
	now := s.now()
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != fileExtension {
			continue
		}
		p := filepath.Join(s.directory, f.Name())
		raw, readErr := os.ReadFile(p)
		if readErr != nil {
			continue
		}
		var entry Entry
		if json.Unmarshal(raw, &entry) == nil && !entry.ExpiredAt(now) {
			continue
		}
		if os.Remove(p) == nil {
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of entries on disk, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.directory)
	if err != nil {
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	n := 0
	for _, f := range files {
		if !f.IsDir() && filepath.Ext(f.Name()) == fileExtension {
			n++
		}
	}
	return n, nil
}

// Enabled reports whether the store is active.
func (s *FileStore) Enabled() bool { return s.enabled }

// Directory returns the cache directory.
func (s *FileStore) Directory() string { return s.directory }

// TTL returns the lifetime given to new entries.
func (s *FileStore) TTL() time.Duration { return s.ttl }

func (s *FileStore) path(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return filepath.Join(s.directory, r.Replace(key)+fileExtension)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	ttl time.Duration
	now clock

	mu      sync.Mutex
	entries map[string]Entry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]Entry)}
}

// Get returns the data stored under key.
func (m *MemoryStore) Get(key string) (json.RawMessage, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if e.ExpiredAt(m.now()) {
		delete(m.entries, key)
		return nil, ErrExpired
	}
	return e.Data, nil
}

// Set stores data under key.
func (m *MemoryStore) Set(key string, data json.RawMessage) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = NewEntry(key, data, m.ttl, m.now())
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of entries held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
