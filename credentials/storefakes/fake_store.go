package storefakes

import (
	"sync"

	"github.com/orderdesk/go-chatbot-client/credentials"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory credential store for tests. Not durable.
type FakeStore struct {
	entries map[string]string
	lock    sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{entries: make(map[string]string)}
}

func (fs *FakeStore) Get(key string) (string, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	value, ok := fs.entries[key]
	if !ok {
		return "", credentials.ErrNotFound
	}
	return value, nil
}

func (fs *FakeStore) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.entries[key] = value
	return nil
}

func (fs *FakeStore) Remove(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	delete(fs.entries, key)
	return nil
}

// Len reports how many slots are populated.
func (fs *FakeStore) Len() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return len(fs.entries)
}
