package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"ecessbot/core/log"
)

// Store persists a single JSON document in a file.
//
// The document is loaded lazily on first access. A missing or malformed file is
// replaced with the empty default (and that default is written back), so callers never
// see a parse error. Every write is a full overwrite: the document is serialized with
// sorted map keys to a temp file and renamed into place while holding a file lock.
type Store[T any] struct {
	path       string
	newDefault func() T

	mutex    sync.Mutex
	fileLock *flock.Flock
	doc      T
	loaded   bool
}

// New creates a store for dir/filename. newDefault builds the empty document.
func New[T any](dir, filename string, newDefault func() T) (*Store[T], error) {
	if filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	return &Store[T]{
		path:       path,
		newDefault: newDefault,
		fileLock:   flock.New(path + ".lock"),
	}, nil
}

// Path returns the file backing this store
func (s *Store[T]) Path() string {
	return s.path
}

// Load returns a copy of the current document
func (s *Store[T]) Load() T {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureLoaded()
	return s.copyOf(s.doc)
}

// Save overwrites the whole document
func (s *Store[T]) Save(doc T) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureLoaded()
	if err := s.write(doc); err != nil {
		return err
	}
	s.doc = s.copyOf(doc)
	return nil
}

// Update runs a read-modify-write on a copy of the document and persists it if fn
// succeeds. When fn returns an error nothing is written and the in-memory document
// is left as it was. Updates on the same store are serialized.
func (s *Store[T]) Update(fn func(doc T) (T, error)) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureLoaded()
	updated, err := fn(s.copyOf(s.doc))
	if err != nil {
		return err
	}
	if err := s.write(updated); err != nil {
		return err
	}
	s.doc = s.copyOf(updated)
	return nil
}

func (s *Store[T]) ensureLoaded() {
	if s.loaded {
		return
	}
	s.doc = s.read()
	s.loaded = true
}

func (s *Store[T]) read() T {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Error("❌ Failed to read document, resetting to empty", "path", s.path, "error", err)
		} else {
			log.Info("📋 Document does not exist, creating empty default", "path", s.path)
		}
		return s.resetToDefault()
	}

	doc := s.newDefault()
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("⚠️ Document is malformed, its contents are lost and it is reset to empty", "path", s.path, "error", err)
		return s.resetToDefault()
	}
	if isNil(doc) {
		log.Warn("⚠️ Document is null, resetting to empty", "path", s.path)
		return s.resetToDefault()
	}
	return doc
}

func (s *Store[T]) resetToDefault() T {
	doc := s.newDefault()
	if err := s.write(doc); err != nil {
		log.Error("❌ Failed to persist empty default document", "path", s.path, "error", err)
	}
	return doc
}

func (s *Store[T]) write(doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := s.fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to lock document %s: %w", s.path, err)
	}
	defer func() {
		if err := s.fileLock.Unlock(); err != nil {
			log.Error("❌ Failed to unlock document", "path", s.path, "error", err)
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace document %s: %w", s.path, err)
	}
	return nil
}

// copyOf deep-copies doc through its JSON form so callers can mutate maps freely
func (s *Store[T]) copyOf(doc T) T {
	data, err := json.Marshal(doc)
	if err != nil {
		log.Error("❌ Failed to copy document", "path", s.path, "error", err)
		return s.newDefault()
	}
	copied := s.newDefault()
	if err := json.Unmarshal(data, &copied); err != nil {
		log.Error("❌ Failed to copy document", "path", s.path, "error", err)
		return s.newDefault()
	}
	return copied
}

func isNil(doc any) bool {
	data, err := json.Marshal(doc)
	return err == nil && string(data) == "null"
}
