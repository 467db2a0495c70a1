package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/patrickmn/go-cache"
)

// Storage keys. Key names match what the backend and older clients expect,
// so a state file is self-describing.
const (
	KeyUser           = "user"
	KeyAccessToken    = "access_token"
	KeyRefreshToken   = "refresh_token"
	KeyNotifications  = "notifications"
	KeyLockedSessions = "lockedSessions"
)

// Store is the persistent credential store: a go-cache keyed by string with
// every mutation flushed to a single state file. Values are stored as
// strings; structured values go through the JSON helpers.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
	path  string
}

// Open loads the store from path, starting empty when the file is absent.
func Open(path string) (*Store, error) {
	c := cache.New(cache.NoExpiration, 0)
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
		if err := c.LoadFile(path); err != nil && !os.IsNotExist(err) {
			// A torn write or stale format must not brick the client.
			c = cache.New(cache.NoExpiration, 0)
		}
	}
	return &Store{cache: c, path: path}, nil
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.cache.Get(key)
	if !found {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(key, value, cache.NoExpiration)
	return s.persist()
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(key)
	return s.persist()
}

// Clear wipes every key, including notifications and filter locks.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Flush()
	return s.persist()
}

// ClearCredentials removes the user record and both tokens, leaving
// notifications and filter locks untouched. Missing keys are not an error.
func (s *Store) ClearCredentials() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(KeyUser)
	s.cache.Delete(KeyAccessToken)
	s.cache.Delete(KeyRefreshToken)
	return s.persist()
}

// GetJSON decodes the value at key into v. Missing keys return false with
// no error; a corrupt value returns the decode error.
func (s *Store) GetJSON(key string, v interface{}) (bool, error) {
	raw, found := s.Get(key)
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) SetJSON(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(key, string(raw))
}

// SessionLocked reads the persisted filter-lock flag for a session id,
// defaulting to false when never recorded.
func (s *Store) SessionLocked(sessionId string) bool {
	locks := map[string]bool{}
	if _, err := s.GetJSON(KeyLockedSessions, &locks); err != nil {
		return false
	}
	return locks[sessionId]
}

// SetSessionLocked records the filter-lock flag for a session id. The map is
// read-modify-write; fine under the single mutating owner.
func (s *Store) SetSessionLocked(sessionId string, locked bool) error {
	locks := map[string]bool{}
	if _, err := s.GetJSON(KeyLockedSessions, &locks); err != nil {
		locks = map[string]bool{}
	}
	locks[sessionId] = locked
	return s.SetJSON(KeyLockedSessions, locks)
}

func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	if err := s.cache.SaveFile(s.path); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}
