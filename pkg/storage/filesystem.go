package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/agent-registry/pkg/lifecycle"
)

// filesystem keeps each document as a file under basePath, with keys mapping
// directly to relative file paths.
type filesystem struct {
	basePath string
	maxSize  int64
	logger   *slog.Logger
}

func newFilesystem(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("base_path required")
	}

	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base_path: %w", err)
	}

	return &filesystem{
		basePath: absPath,
		maxSize:  cfg.MaxDocumentBytes(),
		logger:   logger,
	}, nil
}

func (f *filesystem) Start(lc *lifecycle.Coordinator) error {
	if err := os.MkdirAll(f.basePath, 0755); err != nil {
		return fmt.Errorf("create base_path: %w", err)
	}
	f.logger.Info("storage directory ready", "base_path", f.basePath)
	return nil
}

// Store writes data to a temp file in the target directory and renames it
// over the target, so readers see either the old or the new document.
func (f *filesystem) Store(ctx context.Context, key string, data []byte) error {
	path, err := f.prepare(key, data)
	if err != nil {
		return err
	}

	unlock, err := lockDir(ctx, filepath.Dir(path))
	if err != nil {
		return err
	}
	defer unlock()

	return writeAtomic(path, data)
}

// Swap holds the directory lock across reading the current document and
// renaming the new one into place.
func (f *filesystem) Swap(ctx context.Context, key string, expected, data []byte) error {
	path, err := f.prepare(key, data)
	if err != nil {
		return err
	}

	unlock, err := lockDir(ctx, filepath.Dir(path))
	if err != nil {
		return err
	}
	defer unlock()

	current, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if expected != nil {
			return ErrStale
		}
	case err != nil:
		return mapFSError(fmt.Errorf("read file: %w", err))
	case expected == nil || !bytes.Equal(current, expected):
		return ErrStale
	}

	return writeAtomic(path, data)
}

func (f *filesystem) prepare(key string, data []byte) (string, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return "", err
	}
	if f.maxSize > 0 && int64(len(data)) > f.maxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), f.maxSize)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", mapFSError(fmt.Errorf("create directory: %w", err))
	}
	return path, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return mapFSError(fmt.Errorf("create temp file: %w", err))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return mapFSError(fmt.Errorf("rename temp file: %w", err))
	}

	return nil
}

func (f *filesystem) Retrieve(ctx context.Context, key string) ([]byte, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	if f.maxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, mapFSError(err)
		}
		if info.Size() > f.maxSize {
			return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, info.Size(), f.maxSize)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mapFSError(fmt.Errorf("read file: %w", err))
	}

	return data, nil
}

func (f *filesystem) Delete(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return mapFSError(fmt.Errorf("remove file: %w", err))
	}

	dir := filepath.Dir(path)
	if dir != f.basePath && strings.HasPrefix(dir, f.basePath) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			f.logger.Warn("failed to read directory for cleanup", "dir", dir, "error", err)
			return nil
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
				f.logger.Warn("failed to remove empty directory", "dir", dir, "error", err)
			}
		}
	}

	return nil
}

func (f *filesystem) Validate(ctx context.Context, key string) (bool, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, mapFSError(fmt.Errorf("stat file: %w", err))
	}

	return true, nil
}

func (f *filesystem) fullPath(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(f.basePath, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(fullPath, f.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}

	return fullPath, nil
}

func mapFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	default:
		return err
	}
}
