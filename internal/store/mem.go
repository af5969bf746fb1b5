package store

import "sync"

// Mem is an in-memory Store. Used by tests and as the degraded mode when
// no durable storage can be opened; everything in it dies with the
// process.
type Mem struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMem() *Mem { return &Mem{m: map[string]string{}} }

func (s *Mem) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *Mem) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Mem) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
