package repository

import (
	"context"
	"time"

	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
	"github.com/okian/agenda/pkg/metrics"
)

// SnapshotStore holds the latest normalized fixtures or schedule of one
// upstream source.
type SnapshotStore struct {
	source model.Source
	file   *jsonFile[model.MatchEvent]
	log    logger.Logger
}

// NewSnapshotStore returns a snapshot store for source backed by path.
func NewSnapshotStore(source model.Source, path string, opts ...Option) *SnapshotStore {
	cfg := newFileConfig("snapshot-"+string(source), opts)
	return &SnapshotStore{source: source, file: newJSONFile[model.MatchEvent](path, cfg), log: cfg.logger}
}

// Source returns the upstream this snapshot belongs to.
func (s *SnapshotStore) Source() model.Source { return s.source }

// Load returns the snapshot; an absent snapshot is empty.
func (s *SnapshotStore) Load(ctx context.Context) ([]model.MatchEvent, error) {
	return s.file.read(ctx), nil
}

// Replace overwrites the snapshot atomically.
func (s *SnapshotStore) Replace(ctx context.Context, events []model.MatchEvent) error {
	if err := s.file.write(events); err != nil {
		metrics.RecordErrorByComponent("snapshot", "write_failed")
		s.log.Error(ctx, "replacing snapshot failed", logger.String("source", string(s.source)), logger.Error(err))
		return err
	}
	metrics.UpdateSnapshot(string(s.source), len(events), time.Now().Unix())
	return nil
}
