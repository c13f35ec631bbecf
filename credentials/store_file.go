package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// FileStore persists credentials as a small JSON document on disk. Writes go
// through a temp file and rename so a crash never leaves a torn file. A
// malformed or unreadable file is treated as empty, not as a fatal error.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed store at the given path. An empty path
// resolves to <user config dir>/chatbot/credentials.json.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, "[NewFileStore] resolve user config dir")
		}
		path = filepath.Join(configDir, "chatbot", "credentials.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] create state dir")
	}
	return &FileStore{path: path}, nil
}

func (fs *FileStore) Get(key string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries := fs.load()
	value, ok := entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries := fs.load()
	entries[key] = value
	return fs.save(entries)
}

func (fs *FileStore) Remove(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries := fs.load()
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return fs.save(entries)
}

func (fs *FileStore) load() map[string]string {
	entries := make(map[string]string)
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", fs.path).Msg("Failed to read credential file, treating as empty")
		}
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", fs.path).Msg("Malformed credential file, treating as empty")
		return make(map[string]string)
	}
	return entries
}

func (fs *FileStore) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore.save] marshal entries")
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.save] write temp file")
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return errors.Wrap(err, "[FileStore.save] rename into place")
	}
	return nil
}
