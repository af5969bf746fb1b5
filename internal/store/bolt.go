package store

import (
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketState = "state" // key -> value

// Bolt stores keys in a single-bucket bbolt database.
type Bolt struct {
	db *bbolt.DB
}

// NewBolt opens (or creates) a Bolt database at the specified path.
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketState))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(key string) (string, error) {
	var value string
	var found bool
	if err := b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(boltBucketState)).Get([]byte(key)); v != nil {
			value = string(v)
			found = true
		}
		return nil
	}); err != nil {
		return "", err
	}
	if !found {
		return "", ErrNotFound
	}
	return value, nil
}

func (b *Bolt) Set(key, value string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketState)).Put([]byte(key), []byte(value))
	})
}

func (b *Bolt) Delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketState)).Delete([]byte(key))
	})
}

func (b *Bolt) Close() error { return b.db.Close() }
