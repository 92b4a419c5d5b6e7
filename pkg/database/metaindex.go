package database

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var rootKeysBucket = []byte("root_keys")

// metaIndex is the bbolt-backed ledger of root keys that have seen a
// first write within one namespace, grounded on the teacher repo's
// pkg/storage/boltdb.go bucket-per-concern style.
type metaIndex struct {
	db *bolt.DB
}

func openMetaIndex(path string) (*metaIndex, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open meta index at %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootKeysBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create root_keys bucket: %w", err)
	}
	return &metaIndex{db: db}, nil
}

func (m *metaIndex) Close() error {
	return m.db.Close()
}

// RecordRootKey implements rootkeyview.RootKeyIndex. namespace is
// ignored: one metaIndex instance is already scoped to one namespace.
func (m *metaIndex) RecordRootKey(namespace string, rootKey []byte) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootKeysBucket)
		return bucket.Put(rootKey, []byte{1})
	})
}

// ListRootKeys returns every root key recorded for this namespace, in
// bbolt's native key order.
func (m *metaIndex) ListRootKeys() ([][]byte, error) {
	var keys [][]byte
	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootKeysBucket)
		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte{}, k...))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list root keys: %w", err)
	}
	return keys, nil
}
