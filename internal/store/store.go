package store

import "errors"

// ErrNotFound is returned by Get for a key that was never set.
var ErrNotFound = errors.New("store: key not found")

// Store is durable key-value string storage for per-installation state.
// Implementations are picked at composition time; callers never branch
// on the storage medium.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
