package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local implements Store on the local filesystem, for development runs
// without cloud credentials.
type Local struct {
	baseDir string
}

// NewLocal creates a filesystem-backed store rooted at baseDir.
func NewLocal(baseDir string) (*Local, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

// Load reads the snapshot file at key.
func (s *Local) Load(_ context.Context, key string) ([]byte, bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is confined to baseDir by resolve
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

// Save writes the snapshot file at key, creating parent directories.
func (s *Local) Save(_ context.Context, key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create parent directories: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// EnsureBucket is satisfied by the base directory existing.
func (s *Local) EnsureBucket(context.Context) error {
	return nil
}

// resolve joins key under baseDir and rejects path traversal.
func (s *Local) resolve(key string) (string, error) {
	full := filepath.Join(s.baseDir, filepath.FromSlash(key))
	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(full), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes base directory", key)
	}
	return full, nil
}
