package util

import (
	"hash/fnv"
	"sync"
)

// KeyedMutex serializes work per string key using a fixed set of stripes.
// Two distinct keys may share a stripe; that only costs contention, never
// correctness.
type KeyedMutex struct {
	stripes []sync.Mutex
}

// NewKeyedMutex creates a keyed mutex with the given stripe count.
func NewKeyedMutex(stripes int) *KeyedMutex {
	if stripes <= 0 {
		stripes = 64
	}
	return &KeyedMutex{stripes: make([]sync.Mutex, stripes)}
}

// Lock acquires the stripe for key and returns its unlock function.
func (m *KeyedMutex) Lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	stripe := &m.stripes[h.Sum32()%uint32(len(m.stripes))]
	stripe.Lock()
	return stripe.Unlock
}
