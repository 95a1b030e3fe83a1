package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/agenda/pkg/logger"
	"github.com/okian/agenda/pkg/metrics"
)

// jsonFile reads and replaces one JSON array file.
type jsonFile[T any] struct {
	path   string
	cfg    fileConfig
	rename func(oldpath, newpath string) error
}

func newJSONFile[T any](path string, cfg fileConfig) *jsonFile[T] {
	return &jsonFile[T]{path: path, cfg: cfg, rename: os.Rename}
}

// read returns the stored array. A missing, empty or malformed file reads as
// an empty collection.
func (f *jsonFile[T]) read(ctx context.Context) []T {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.cfg.logger.Warn(ctx, "collection unreadable, treating as empty",
				logger.String("path", f.path), logger.Error(err))
			metrics.RecordStoreReadFallback()
		}
		return []T{}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		f.cfg.logger.Warn(ctx, "collection is not a JSON array, treating as empty",
			logger.String("path", f.path), logger.Error(err))
		metrics.RecordStoreReadFallback()
		return []T{}
	}
	if items == nil {
		// literal null
		return []T{}
	}
	return items
}

// write replaces the file through a temp file in the same directory and a
// rename, so a reader sees either the old or the new array.
func (f *jsonFile[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersist, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", ErrPersist, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", ErrPersist, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write temp: %w", ErrPersist, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync temp: %w", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %w", ErrPersist, err)
	}
	if err := os.Chmod(tmpName, f.cfg.mode); err != nil {
		return fmt.Errorf("%w: chmod temp: %w", ErrPersist, err)
	}
	if err := f.rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: rename: %w", ErrPersist, err)
	}
	committed = true
	return nil
}
