// Package filestore persists each collection as a JSON file in a data directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
	"quiz-platform/internal/store"
)

// Store keeps one <collection>.json file per collection under dir.
// Files are replaced through a temp file and rename, so readers never see a partial snapshot.
type Store struct {
	dir string
	sf  singleflight.Group

	// gens counts committed writes per collection; reads only share a flight within one generation.
	mu    sync.Mutex
	locks map[store.Collection]*sync.Mutex
	gens  map[store.Collection]uint64
}

// New creates dir if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		dir:   dir,
		locks: make(map[store.Collection]*sync.Mutex),
		gens:  make(map[store.Collection]uint64),
	}, nil
}

// Read coalesces concurrent reads of the same collection into one file read.
// A read started after a write commits never joins a flight started before it.
// Callers must not modify the returned bytes.
func (s *Store) Read(_ context.Context, c store.Collection) ([]byte, error) {
	key := fmt.Sprintf("%s@%d", c, s.generation(c))
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return readFile(s.path(c))
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Store) Write(_ context.Context, c store.Collection, data []byte) error {
	l := s.lock(c)
	l.Lock()
	defer l.Unlock()
	return s.commit(c, data)
}

func (s *Store) Update(_ context.Context, c store.Collection, fn func([]byte) ([]byte, error)) error {
	l := s.lock(c)
	l.Lock()
	defer l.Unlock()

	current, err := readFile(s.path(c))
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.commit(c, next)
}

// commit must run under the collection lock.
func (s *Store) commit(c store.Collection, data []byte) error {
	if err := writeAtomic(s.path(c), data); err != nil {
		return err
	}
	s.mu.Lock()
	s.gens[c]++
	s.mu.Unlock()
	return nil
}

func (s *Store) generation(c store.Collection) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[c]
}

func (s *Store) path(c store.Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

func (s *Store) lock(c store.Collection) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[c]
	if !ok {
		l = &sync.Mutex{}
		s.locks[c] = l
	}
	return l
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
