// Package slot provides the local identity slot backends and the codecs that
// serialize an Identity into them.
package slot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/careline/homecare-portal/internal/core/domain"
)

// FileSlot keeps the record in a single file. Writes go to a temporary file
// that is renamed over the target, so a crash leaves the old or the new record
// and never a torn one.
type FileSlot struct {
	path string
	mu   sync.Mutex
}

// NewFileSlot creates the parent directory of path if needed.
func NewFileSlot(path string) (*FileSlot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create slot dir: %w", err)
	}
	return &FileSlot{path: path}, nil
}

func (s *FileSlot) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read slot: %w", err)
	}
	return data, nil
}

func (s *FileSlot) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace slot: %w", err)
	}
	return nil
}

func (s *FileSlot) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove slot: %w", err)
	}
	return nil
}

// Ping checks the slot directory is still there.
func (s *FileSlot) Ping(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}
