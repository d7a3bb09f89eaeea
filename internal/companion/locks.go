package companion

import "sync"

// userLocks serializes state mutations per user so concurrent interactions
// for the same companion apply one at a time. Lock entries are created lazily
// and never removed; the population is bounded by the active user count.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for userID and returns its unlock func.
func (l *userLocks) Lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
