package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrMissingFileName = errors.New("file name is required")
)

// FileStore persists uploaded report files and hands back a durable path.
type FileStore interface {
	Save(ctx context.Context, originalName string, content io.Reader) (*model.UploadedFile, error)
	Remove(ctx context.Context, path string) error
}

// LocalStore writes files under a single directory with generated names.
type LocalStore struct {
	dir     string
	maxSize int64
}

func NewLocalStore(dir string, maxSize int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, maxSize: maxSize}, nil
}

func (s *LocalStore) Save(ctx context.Context, originalName string, content io.Reader) (*model.UploadedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := filepath.Base(strings.TrimSpace(originalName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return nil, ErrMissingFileName
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(base))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}

	reader := content
	if s.maxSize > 0 {
		reader = io.LimitReader(content, s.maxSize+1)
	}
	written, err := io.Copy(f, reader)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.maxSize > 0 && written > s.maxSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}

	return &model.UploadedFile{
		Path:         filepath.ToSlash(path),
		OriginalName: base,
		Size:         written,
	}, nil
}

// Remove deletes a file previously returned by Save. Paths outside the
// store directory are refused.
func (s *LocalStore) Remove(_ context.Context, path string) error {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.Dir(clean) != filepath.Clean(s.dir) {
		return fmt.Errorf("refusing to remove %s outside upload dir", path)
	}
	if err := os.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
