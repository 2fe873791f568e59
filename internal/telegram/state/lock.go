package state

import "sync"

// userLocks serializes updates of one user, entries live while someone holds or waits on them
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*userLock)}
}

func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
