package sessionrepofake

import (
	"sync"

	"github.com/jrsteele09/go-asset-console/session"
)

var _ session.Store = (*FakeSessionStore)(nil)

// FakeSessionStore keeps the session in memory and counts writes.
type FakeSessionStore struct {
	current *session.Session
	saves   int
	clears  int
	lock    sync.RWMutex
}

func NewFakeSessionStore(initial *session.Session) *FakeSessionStore {
	return &FakeSessionStore{current: initial.Clone()}
}

func (fs *FakeSessionStore) Load() (*session.Session, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if fs.current == nil {
		return &session.Session{}, nil
	}
	return fs.current.Clone(), nil
}

func (fs *FakeSessionStore) Save(s *session.Session) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.current = s.Clone()
	fs.saves++
	return nil
}

func (fs *FakeSessionStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.current = nil
	fs.clears++
	return nil
}

// Saves is the number of Save calls so far.
func (fs *FakeSessionStore) Saves() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.saves
}

// Clears is the number of Clear calls so far.
func (fs *FakeSessionStore) Clears() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.clears
}
