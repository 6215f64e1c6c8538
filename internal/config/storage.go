package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rcinit/pkg/logging"

	"github.com/google/renameio/v2"
)

// ErrNotExist is returned by Storage.ReadFile when the file is missing.
var ErrNotExist = errors.New("file does not exist")

// Storage reads and writes files below the configuration directory.
// Writes are atomic: readers observe either the old or the new content.
type Storage struct {
	mu         sync.RWMutex
	configPath string
}

// NewStorage creates a Storage rooted at the default configuration directory.
func NewStorage() *Storage {
	return &Storage{configPath: DefaultConfigPath}
}

// NewStorageWithPath creates a Storage rooted at configPath.
func NewStorageWithPath(configPath string) *Storage {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return &Storage{configPath: configPath}
}

// Path returns the absolute location of name inside the configuration directory.
// Absolute names are returned unchanged.
func (s *Storage) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.configPath, name)
}

// ReadFile returns the content of name.
func (s *Storage) ReadFile(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	logging.Debug("Storage", "Loaded %s", path)
	return data, nil
}

// WriteFile atomically replaces name with data, creating parent directories.
func (s *Storage) WriteFile(name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	logging.Info("Storage", "Saved %s", path)
	return nil
}
