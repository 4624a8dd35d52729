package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store persists enrichment jobs in BoltDB so they survive restarts between
// the enqueue at task creation and the asynchronous drain.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	bucket := []byte("enrichment")
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: bucket,
	}, nil
}

// Enqueue stores a job under a timestamp-ordered key so drains see jobs in
// arrival order.
func (s *Store) Enqueue(job Job) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	job.normalize()
	job.storeKey = []byte(buildKey(job))

	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(job.storeKey, payload)
	})
}

// Batch returns up to limit jobs without removing them.
func (s *Store) Batch(limit int) ([]Job, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 20
	}

	var jobs []Job
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(jobs) < limit; k, v = c.Next() {
			var job Job
			if err := json.Unmarshal(v, &job); err != nil {
				continue
			}
			job.storeKey = append([]byte(nil), k...)
			jobs = append(jobs, job)
		}
		return nil
	})
	return jobs, err
}

// Remove deletes the provided job from the queue.
func (s *Store) Remove(job Job) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if len(job.storeKey) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(job.storeKey)
	})
}

// Requeue re-inserts a job after bumping its timestamp, moving it behind
// newer arrivals.
func (s *Store) Requeue(job Job) error {
	job.storeKey = nil
	job.Timestamp = time.Now()
	return s.Enqueue(job)
}

// Size returns the number of pending jobs.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildKey(job Job) string {
	return fmt.Sprintf("%020d_%s", job.Timestamp.UnixNano(), job.ID)
}
