package cache

import (
	"context"
	"sync"
)

// MemoryStore is a Store bounded by entry count. The oldest insert is
// evicted first; reads do not refresh an entry.
type MemoryStore[T any] struct {
	mu sync.RWMutex
	m  map[string]T
	// order[head:] holds live keys, oldest first.
	order []string
	head  int
	limit int
}

// NewMemoryStore returns a store holding at most limit entries. A limit of zero
// or less disables the bound.
func NewMemoryStore[T any](limit int) *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]T{}, limit: limit}
}

func (s *MemoryStore[T]) Get(_ context.Context, key string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, key string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[key]; !ok {
		s.order = append(s.order, key)
	}
	s.m[key] = v
	for s.limit > 0 && len(s.order)-s.head > s.limit {
		delete(s.m, s.order[s.head])
		s.order[s.head] = ""
		s.head++
	}
	if s.head > 0 && s.head >= len(s.order)/2 {
		n := copy(s.order, s.order[s.head:])
		clear(s.order[n:])
		s.order = s.order[:n]
		s.head = 0
	}
	return nil
}

func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
