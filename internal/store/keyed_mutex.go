package store

import "sync"

// KeyedMutex hands out one mutex per user id. Entries are reference counted and dropped once no
// goroutine holds or waits on them, so the map only grows with concurrent users.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[int64]*lockEntry)}
}

func (locks *KeyedMutex) Lock(key int64) func() {
	locks.mu.Lock()
	entry, ok := locks.entries[key]
	if !ok {
		entry = &lockEntry{}
		locks.entries[key] = entry
	}
	entry.refs++
	locks.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		locks.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(locks.entries, key)
		}
		locks.mu.Unlock()
	}
}

func (locks *KeyedMutex) size() int {
	locks.mu.Lock()
	defer locks.mu.Unlock()
	return len(locks.entries)
}
