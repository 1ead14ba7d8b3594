package service

import (
	"sync"

	"github.com/google/uuid"
)

// cardLocks hands out one mutex per card ID. Entries are dropped once no
// caller holds or waits on them, so the map only holds cards mid-tap.
type cardLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*cardLock
}

type cardLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until the caller holds id's mutex and returns the unlock func.
func (l *cardLocks) lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*cardLock)
	}
	cl, ok := l.locks[id]
	if !ok {
		cl = &cardLock{}
		l.locks[id] = cl
	}
	cl.refs++
	l.mu.Unlock()

	cl.mu.Lock()
	return func() {
		cl.mu.Unlock()

		l.mu.Lock()
		cl.refs--
		if cl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// held returns how many card IDs currently have a lock entry.
func (l *cardLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
