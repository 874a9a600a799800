package session

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/client/api"
)

var (
	bucketSession = []byte("session")
	snapshotKey   = []byte("current")
)

// Snapshot is the durable part of the client session: the last-known
// user projection and the session token. It survives restarts; server
// truth is re-established by CheckAuth on start.
type Snapshot struct {
	User  *api.User `json:"user,omitempty"`
	Token string    `json:"token,omitempty"`
}

// Storage persists the session snapshot in a local bbolt file.
type Storage struct {
	db *bbolt.DB
}

func OpenStorage(path string) (*Storage, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) Save(snap Snapshot) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		return tx.Bucket(bucketSession).Put(snapshotKey, data)
	})
}

// Load returns the stored snapshot, or a zero snapshot when none exists.
func (s *Storage) Load() (Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSession).Get(snapshotKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &snap)
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

func (s *Storage) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(snapshotKey)
	})
}
