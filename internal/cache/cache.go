// Package cache persists checkpoint indexes between runs so repeated
// analysis of the same demo file skips the decode pass.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.etcd.io/bbolt"

	"demoscope/keyframe"
)

const indexBucket = "indexes"

func init() {
	// Entity properties travel as interface values inside checkpoints.
	// Gob needs the concrete types registered before encoding them.
	gob.Register(int8(0))
	gob.Register(int16(0))
	gob.Register(int32(0))
	gob.Register(int64(0))
	gob.Register(int(0))
	gob.Register(uint8(0))
	gob.Register(uint16(0))
	gob.Register(uint32(0))
	gob.Register(uint64(0))
	gob.Register(uint(0))
	gob.Register(float32(0))
	gob.Register(float64(0))
	gob.Register("")
	gob.Register(false)
	gob.Register([]float32(nil))
	gob.Register([]int32(nil))
	gob.Register([]uint32(nil))
	gob.Register([]uint64(nil))
	gob.Register([]interface{}(nil))
}

// Store provides a BoltDB-backed index cache.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed cache at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put persists an index under the demo fingerprint.
func (s *Store) Put(fingerprint string, ix *keyframe.Index) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("cache is not configured")
	}
	if strings.TrimSpace(fingerprint) == "" {
		return fmt.Errorf("fingerprint is required")
	}
	if ix == nil {
		return fmt.Errorf("index is required")
	}

	payload, err := encodeIndex(ix)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(indexBucket))
		if bucket == nil {
			return fmt.Errorf("index bucket is missing")
		}
		return bucket.Put([]byte(fingerprint), payload)
	})
}

// Get fetches an index by demo fingerprint. The second return value
// reports whether an entry was found.
func (s *Store) Get(fingerprint string) (*keyframe.Index, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, fmt.Errorf("cache is not configured")
	}
	if strings.TrimSpace(fingerprint) == "" {
		return nil, false, fmt.Errorf("fingerprint is required")
	}

	var payload []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(indexBucket))
		if bucket == nil {
			return fmt.Errorf("index bucket is missing")
		}
		if raw := bucket.Get([]byte(fingerprint)); raw != nil {
			payload = make([]byte, len(raw))
			copy(payload, raw)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if payload == nil {
		return nil, false, nil
	}

	ix, err := decodeIndex(payload)
	if err != nil {
		return nil, false, err
	}
	return ix, true, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(indexBucket))
		if err != nil {
			return fmt.Errorf("create index bucket: %w", err)
		}
		return nil
	})
}

func encodeIndex(ix *keyframe.Index) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	if err := gob.NewEncoder(enc).Encode(ix); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("gob encode index: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flush index payload: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeIndex(payload []byte) (*keyframe.Index, error) {
	dec, err := zstd.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	var ix keyframe.Index
	if err := gob.NewDecoder(dec).Decode(&ix); err != nil {
		return nil, fmt.Errorf("gob decode index: %w", err)
	}
	return &ix, nil
}
