package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StorageKey names the persisted session, locally and on disk.
const StorageKey = "auth-storage"

// Store persists a session between process runs.
type Store interface {
	// Load returns the persisted session, or an empty one when nothing is stored.
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// persisted is the on-disk layout, versioned so older files can be migrated.
type persisted struct {
	State   *Session `json:"state"`
	Version int      `json:"version"`
}

const persistedVersion = 0

// FileStore keeps the session in a JSON file readable only by the owner.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore stores the session under dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, StorageKey+".json")}, nil
}

// NewDefaultFileStore stores the session under ~/.assetctl.
func NewDefaultFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return NewFileStore(filepath.Join(home, ".assetctl"))
}

// Path is the file backing the store.
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if p.State == nil {
		return &Session{}, nil
	}
	return p.State, nil
}

func (fs *FileStore) Save(s *Session) error {
	data, err := json.MarshalIndent(persisted{State: s, Version: persistedVersion}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return os.WriteFile(fs.path, data, 0600)
}

func (fs *FileStore) Clear() error {
	if _, err := os.Stat(fs.path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(fs.path)
}
