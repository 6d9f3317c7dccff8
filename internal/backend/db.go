// ABOUTME: bbolt-backed post storage for the development backend.
// ABOUTME: Posts live in one bucket keyed by big-endian id; lookups accept ids or title slugs.
package backend

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/2389-research/postadmin/internal/models"
)

const (
	boltFile    = "posts.db"
	bucketPosts = "posts"
)

// ErrPostNotFound is returned when no post matches an id or key.
var ErrPostNotFound = errors.New("post not found")

// DB stores posts in a bbolt file.
type DB struct {
	bolt *bbolt.DB
}

// Open opens (or creates) the posts database in dataDir.
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	boltDB, err := bbolt.Open(filepath.Join(dataDir, boltFile), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt db: %w", err)
	}

	err = boltDB.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketPosts)); err != nil {
			return fmt.Errorf("failed to create posts bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = boltDB.Close()
		return nil, err
	}

	return &DB{bolt: boltDB}, nil
}

// Close closes the bbolt file.
func (d *DB) Close() error {
	return d.bolt.Close()
}

// List returns every post in id order.
func (d *DB) List() ([]models.Post, error) {
	posts := []models.Post{}
	err := d.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketPosts)).ForEach(func(_, v []byte) error {
			var p models.Post
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to decode post: %w", err)
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

// Get resolves a numeric id, or otherwise the slug of a post title.
func (d *DB) Get(idOrKey string) (models.Post, error) {
	idOrKey = strings.TrimSpace(idOrKey)
	if id, err := strconv.Atoi(idOrKey); err == nil {
		return d.getByID(id)
	}

	want := models.NormalizeKey(idOrKey)
	var found *models.Post
	err := d.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketPosts)).ForEach(func(_, v []byte) error {
			if found != nil {
				return nil
			}
			var p models.Post
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to decode post: %w", err)
			}
			if p.Key() == want {
				found = &p
			}
			return nil
		})
	})
	if err != nil {
		return models.Post{}, err
	}
	if found == nil {
		return models.Post{}, ErrPostNotFound
	}
	return *found, nil
}

func (d *DB) getByID(id int) (models.Post, error) {
	var post models.Post
	err := d.bolt.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucketPosts)).Get(idKey(id))
		if v == nil {
			return ErrPostNotFound
		}
		return json.Unmarshal(v, &post)
	})
	return post, err
}

// Insert stores a new post. A client-supplied id is kept when it is free;
// otherwise the post gets one more than the highest stored id.
func (d *DB) Insert(post models.Post) (models.Post, error) {
	err := d.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))

		if post.ID <= 0 || b.Get(idKey(post.ID)) != nil {
			next := 1
			if k, _ := b.Cursor().Last(); k != nil {
				next = int(binary.BigEndian.Uint64(k)) + 1
			}
			post.ID = next
		}
		if post.UserID == 0 {
			post.UserID = models.DefaultUserID
		}

		data, err := json.Marshal(post)
		if err != nil {
			return fmt.Errorf("failed to encode post: %w", err)
		}
		if err := b.Put(idKey(post.ID), data); err != nil {
			return fmt.Errorf("failed to put post in bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Count returns the number of stored posts.
func (d *DB) Count() (int, error) {
	n := 0
	err := d.bolt.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(bucketPosts)).Stats().KeyN
		return nil
	})
	return n, err
}

// Seed inserts n sample posts when the database is empty.
func (d *DB) Seed(n int) error {
	count, err := d.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for i := 1; i <= n; i++ {
		draft := models.NewDraft(
			fmt.Sprintf("Sample post %d", i),
			fmt.Sprintf("Body of sample post number %d.", i),
		)
		if _, err := d.Insert(draft); err != nil {
			return fmt.Errorf("failed to seed post %d: %w", i, err)
		}
	}
	return nil
}

func idKey(id int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
