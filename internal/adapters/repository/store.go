// Package repository holds the file-backed collections: the custom-event
// store and the fixture/schedule snapshots.
package repository

import (
	"context"
	"time"

	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
	"github.com/okian/agenda/pkg/metrics"
)

// Store provides whole-collection access to the custom events.
type Store interface {
	// Load returns every stored event in stored order. Missing or corrupt
	// content yields an empty collection, never an error.
	Load(ctx context.Context) ([]model.CustomEvent, error)

	// Save replaces the whole collection. On error the previous content is
	// still what Load returns.
	Save(ctx context.Context, events []model.CustomEvent) error
}

// FileStore keeps the custom events in one JSON array file.
type FileStore struct {
	file *jsonFile[model.CustomEvent]
	log  logger.Logger
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string, opts ...Option) *FileStore {
	cfg := newFileConfig("custom-store", opts)
	return &FileStore{file: newJSONFile[model.CustomEvent](path, cfg), log: cfg.logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.file.path }

// Load implements Store. When the file holds several records with the same
// id only the first one is kept.
func (s *FileStore) Load(ctx context.Context) ([]model.CustomEvent, error) {
	start := time.Now()
	items := s.file.read(ctx)

	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, ev := range items {
		if ev.ID != "" {
			if _, dup := seen[ev.ID]; dup {
				s.log.Warn(ctx, "dropping duplicate custom event id", logger.String("id", ev.ID))
				continue
			}
			seen[ev.ID] = struct{}{}
		}
		out = append(out, ev)
	}

	metrics.RecordStoreOperation("load", "ok", msSince(start))
	metrics.UpdateCustomEventsTotal(len(out))
	return out, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, events []model.CustomEvent) error {
	start := time.Now()
	if err := s.file.write(events); err != nil {
		metrics.RecordStoreOperation("save", "error", msSince(start))
		metrics.RecordErrorByComponent("store", "write_failed")
		s.log.Error(ctx, "saving custom events failed", logger.String("path", s.file.path), logger.Error(err))
		return err
	}
	metrics.RecordStoreOperation("save", "ok", msSince(start))
	metrics.UpdateCustomEventsTotal(len(events))
	s.log.Debug(ctx, "custom events saved", logger.Int("count", len(events)))
	return nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
