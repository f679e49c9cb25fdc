package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned for paths that do not live under the storage
// directory.
var ErrOutsideBase = errors.New("invalid file path: must be within storage directory")

// ErrTooLarge is returned when a file exceeds the configured size limit.
var ErrTooLarge = errors.New("file exceeds storage size limit")

// Storage defines the interface for file storage operations
type Storage interface {
	// StoreFromBytes writes data to a new file whose name follows pattern
	// (as in os.CreateTemp) and returns its path.
	StoreFromBytes(ctx context.Context, pattern string, data []byte) (string, error)

	// Open returns a reader for a stored file
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, path string) error
}

// file is the part of *os.File that StoreFromBytes writes through.
type file interface {
	io.WriteCloser
	Name() string
}

func createTemp(dir, pattern string) (file, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// LocalStorage implements Storage interface using local filesystem
type LocalStorage struct {
	baseDir    string
	maxSize    int64
	createTemp func(dir, pattern string) (file, error)
}

// NewLocalStorage creates the base directory if needed. A maxSize of zero
// disables the size check.
func NewLocalStorage(baseDir string, maxSize int64) (*LocalStorage, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: abs, maxSize: maxSize, createTemp: createTemp}, nil
}

func (s *LocalStorage) StoreFromBytes(ctx context.Context, pattern string, data []byte) (string, error) {
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	f, err := s.createTemp(s.baseDir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name()) // Clean up on error
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	// a failed close can mean a truncated file
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return f.Name(), nil
}

func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if !s.within(path) {
		return nil, ErrOutsideBase
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if !s.within(path) {
		return ErrOutsideBase
	}
	return os.Remove(path)
}

// within reports whether path resolves to a file below the base directory.
func (s *LocalStorage) within(path string) bool {
	rel, err := filepath.Rel(s.baseDir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
