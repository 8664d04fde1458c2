package cart

import "sync"

// keyedMutex serializes the check-then-write sequences (add-or-increment
// and the merge's per-item step) per owner key. The store is not assumed
// to offer an atomic upsert, so without this guard two concurrent adds
// for the same (owner, product, variant) could both miss the existing
// row and insert twice.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*ownerLock)}
}

// lock acquires the mutex for key and returns the matching unlock. Lock
// entries are reference counted and dropped when idle, so the map does
// not grow with the number of owners ever seen.
func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &ownerLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
