package booking

import (
	"sync"
)

// keyedMutex serializes admission attempts per (provider, date) key so the
// availability re-check and the booking write are effectively atomic within
// this process. The database's partial unique index backs this up across
// processes.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (km *keyedMutex) Lock(key string) {
	km.mu.Lock()
	lock, ok := km.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		km.locks[key] = lock
	}
	km.mu.Unlock()
	lock.Lock()
}

func (km *keyedMutex) Unlock(key string) {
	km.mu.Lock()
	lock := km.locks[key]
	km.mu.Unlock()
	if lock != nil {
		lock.Unlock()
	}
}
