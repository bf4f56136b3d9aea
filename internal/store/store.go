// store.go

// Package store is a flat-file JSON document store. Each collection is
// one JSON array file under the data directory, read whole and
// replaced whole. Writes are atomic at the file level (temp file +
// rename) but there is no cross-request transaction: callers doing
// check-then-write get a correctness read, not a correctness
// guarantee.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type Store struct {
	dataDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return &Store{
		dataDir: dataDir,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

func (s *Store) DataDir() string {
	return s.dataDir
}

// Ping verifies the data directory is still writable.
func (s *Store) Ping() error {
	probe := filepath.Join(s.dataDir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	//nolint:errcheck // probe cleanup is best-effort
	_ = os.Remove(probe)
	return nil
}

// Read unmarshals a collection file into dest. A missing file is an
// empty collection, not an error.
func (s *Store) Read(collection string, dest any) error {
	lock := s.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	return s.readLocked(collection, dest)
}

// Write replaces a collection file atomically.
func (s *Store) Write(collection string, v any) error {
	lock := s.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	return s.writeLocked(collection, v)
}

// Update runs a read-modify-write cycle under the collection lock, so
// two concurrent updates to the same collection cannot interleave
// inside this process.
func (s *Store) Update(collection string, dest any, fn func() error) error {
	lock := s.lockFor(collection)
	lock.Lock()
	defer lock.Unlock()

	if err := s.readLocked(collection, dest); err != nil {
		return err
	}

	if err := fn(); err != nil {
		return err
	}

	return s.writeLocked(collection, dest)
}

func (s *Store) readLocked(collection string, dest any) error {
	data, err := os.ReadFile(s.filePath(collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Leave dest at its zero value; callers pass pointers to
			// empty slices.
			return nil
		}
		return fmt.Errorf("read %s: %w", collection, err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}

	return nil
}

func (s *Store) writeLocked(collection string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	path := s.filePath(collection)
	tmp, err := os.CreateTemp(s.dataDir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		//nolint:errcheck // cleanup on write failure
		_ = tmp.Close()
		//nolint:errcheck
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", collection, err)
	}

	if err := tmp.Close(); err != nil {
		//nolint:errcheck
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		//nolint:errcheck
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", collection, err)
	}

	return nil
}

func (s *Store) filePath(collection string) string {
	return filepath.Join(s.dataDir, collection+".json")
}

func (s *Store) lockFor(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[collection] = lock
	}
	return lock
}

// CollectionStats reports the document count and file size of every
// collection file present in the data directory.
func (s *Store) CollectionStats() (map[string]CollectionInfo, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	stats := make(map[string]CollectionInfo)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		name := entry.Name()[:len(entry.Name())-len(".json")]

		info, err := entry.Info()
		if err != nil {
			continue
		}

		var docs []json.RawMessage
		//nolint:errcheck // unreadable collections still report size
		_ = s.Read(name, &docs)

		stats[name] = CollectionInfo{
			Documents: len(docs),
			SizeBytes: info.Size(),
		}
	}

	return stats, nil
}

type CollectionInfo struct {
	Documents int   `json:"documents"`
	SizeBytes int64 `json:"size_bytes"`
}

// NextID assigns integer ids as max existing + 1, or 1 for an empty
// collection.
func NextID(existing []int) int {
	next := 1
	for _, id := range existing {
		if id >= next {
			next = id + 1
		}
	}
	return next
}
