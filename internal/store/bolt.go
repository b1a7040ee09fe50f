package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var postsBucket = []byte("posts")

// BoltStore keeps one post per key in a Bolt bucket. Keys are big-endian
// positions, so a cursor walk returns posts in stored order.
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

func OpenBolt(path string) (*BoltStore, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt store: path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(postsBucket); err != nil {
			return fmt.Errorf("could not ensure bucket %q exists: %w", postsBucket, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(_ context.Context) ([]Post, error) {
	posts := []Post{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(postsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var p Post
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decode post at %x: %w", k, err)
			}
			posts = append(posts, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Save drops and refills the bucket in a single transaction.
func (s *BoltStore) Save(_ context.Context, posts []Post) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(postsBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("clear bucket: %w", err)
		}
		b, err := tx.CreateBucket(postsBucket)
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		for i, p := range posts {
			value, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode post %q: %w", p.ID, err)
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, uint64(i))
			if err := b.Put(key, value); err != nil {
				return fmt.Errorf("could not put post %q: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
