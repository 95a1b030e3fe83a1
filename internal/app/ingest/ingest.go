// Package ingest refreshes the fixtures and schedule snapshots from their
// upstreams, on demand and on a cron schedule.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
	"github.com/okian/agenda/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// FixtureSource fetches upcoming football fixtures.
type FixtureSource interface {
	Fixtures(ctx context.Context) ([]model.MatchEvent, error)
}

// ScheduleSource fetches the e-sports schedule.
type ScheduleSource interface {
	Schedule(ctx context.Context) ([]model.MatchEvent, error)
}

// Snapshot receives a freshly fetched collection.
type Snapshot interface {
	Replace(ctx context.Context, events []model.MatchEvent) error
}

// ErrAlreadyScheduled is returned by Schedule on a second call.
var ErrAlreadyScheduled = errors.New("refresh already scheduled")

// Service fetches each upstream and replaces its snapshot. A failed fetch
// leaves the previous snapshot in place.
type Service struct {
	fixtures     FixtureSource
	schedule     ScheduleSource
	fixturesSnap Snapshot
	scheduleSnap Snapshot
	timeout      time.Duration
	location     *time.Location
	logger       logger.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// New returns a Service.
func New(fixtures FixtureSource, fixturesSnap Snapshot, schedule ScheduleSource, scheduleSnap Snapshot, opts ...Option) *Service {
	s := &Service{
		fixtures:     fixtures,
		fixturesSnap: fixturesSnap,
		schedule:     schedule,
		scheduleSnap: scheduleSnap,
		timeout:      time.Minute,
		location:     time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("ingest")
	}
	return s
}

// RefreshFixtures fetches fixtures and stores them as the new snapshot.
func (s *Service) RefreshFixtures(ctx context.Context) ([]model.MatchEvent, error) {
	return s.refresh(ctx, model.SourceFixtures, s.fixtures.Fixtures, s.fixturesSnap)
}

// RefreshSchedule fetches the e-sports schedule and stores it as the new
// snapshot.
func (s *Service) RefreshSchedule(ctx context.Context) ([]model.MatchEvent, error) {
	return s.refresh(ctx, model.SourceSchedule, s.schedule.Schedule, s.scheduleSnap)
}

// RefreshAll refreshes both sources. One failing source does not stop the
// other.
func (s *Service) RefreshAll(ctx context.Context) error {
	_, errF := s.RefreshFixtures(ctx)
	_, errS := s.RefreshSchedule(ctx)
	return errors.Join(errF, errS)
}

func (s *Service) refresh(
	ctx context.Context,
	src model.Source,
	fetch func(context.Context) ([]model.MatchEvent, error),
	snap Snapshot,
) ([]model.MatchEvent, error) {
	start := time.Now()
	events, err := fetch(ctx)
	if err != nil {
		metrics.RecordIngest(string(src), "fetch_failed", msSince(start))
		metrics.RecordErrorByComponent("ingest", "fetch_failed")
		return nil, fmt.Errorf("refresh %s: %w", src, err)
	}
	if err := snap.Replace(ctx, events); err != nil {
		metrics.RecordIngest(string(src), "store_failed", msSince(start))
		return nil, fmt.Errorf("refresh %s: %w", src, err)
	}
	metrics.RecordIngest(string(src), "success", msSince(start))
	s.logger.Info(ctx, "snapshot refreshed", logger.String("source", string(src)), logger.Int("events", len(events)))
	return events, nil
}

// Schedule starts a cron job that refreshes both sources on spec.
func (s *Service) Schedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return ErrAlreadyScheduled
	}

	c := cron.New(cron.WithLocation(s.location))
	if _, err := c.AddFunc(spec, s.runScheduled); err != nil {
		return fmt.Errorf("schedule refresh %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info(context.Background(), "refresh scheduled", logger.String("cron", spec))
	return nil
}

func (s *Service) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.RefreshAll(ctx); err != nil {
		s.logger.Warn(ctx, "scheduled refresh incomplete", logger.Error(err))
	}
}

// Stop halts the cron job and waits for a running refresh or ctx.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
