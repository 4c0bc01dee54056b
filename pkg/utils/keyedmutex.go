package utils

import "sync"

// KeyedMutex provides an in-process mutex per string key.
// It backs the per-provider serialization boundary for balance-mutating
// operations when a single API instance owns the store. For multi-instance
// deployments pair it with AcquireProviderLock (Redis).
//
// Mutexes are never evicted; the key space (provider ids) is small and stable.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
