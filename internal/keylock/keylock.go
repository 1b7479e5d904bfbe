// Package keylock serialises work per key over a fixed set of mutexes, so
// memory does not grow with the number of keys seen.
package keylock

import (
	"hash/fnv"
	"sync"
)

// DefaultStripes is used when New is given a non-positive count.
const DefaultStripes = 256

// Striped maps every key onto one of a fixed number of mutexes. Two keys can
// share a mutex; callers must never hold two keys at once.
type Striped struct {
	mus []sync.Mutex
}

func New(stripes int) *Striped {
	if stripes <= 0 {
		stripes = DefaultStripes
	}
	return &Striped{mus: make([]sync.Mutex, stripes)}
}

// Lock blocks until key's mutex is held and returns its unlock func.
func (s *Striped) Lock(key string) func() {
	mu := &s.mus[s.index(key)]
	mu.Lock()
	return mu.Unlock
}

func (s *Striped) index(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.mus)))
}

// Stripes reports the fixed number of mutexes.
func (s *Striped) Stripes() int {
	return len(s.mus)
}
