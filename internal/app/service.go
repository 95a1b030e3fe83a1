// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/agenda/internal/adapters/repository"
	"github.com/okian/agenda/internal/adapters/upstream"
	"github.com/okian/agenda/internal/app/ingest"
	"github.com/okian/agenda/internal/domain/aggregate"
	"github.com/okian/agenda/internal/domain/customevents"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

const (
	defaultCustomPath   = "public/calendar-custom.json"
	defaultFixturesPath = "public/calendar-barcelona.json"
	defaultSchedulePath = "public/calendar-esport.json"
)

// Service implements the API dependencies for the calendar.
type Service struct {
	mu sync.RWMutex

	// Configuration
	customPath      string
	fixturesPath    string
	schedulePath    string
	football        upstream.FootballConfig
	esports         upstream.EsportsConfig
	apiKey          string
	upstreamTimeout time.Duration
	refreshCron     string
	location        *time.Location
	now             func() time.Time
	fixtureSource   ingest.FixtureSource
	scheduleSource  ingest.ScheduleSource

	// Components
	events       *customevents.Manager
	fixturesSnap *repository.SnapshotStore
	scheduleSnap *repository.SnapshotStore
	ingest       *ingest.Service

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		customPath:      defaultCustomPath,
		fixturesPath:    defaultFixturesPath,
		schedulePath:    defaultSchedulePath,
		upstreamTimeout: 10 * time.Second,
		location:        time.UTC,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the stores, the upstream clients and the ingestion service,
// and schedules refreshes when a cron spec is configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	storeLog := repository.WithLogger(s.logger.Named("store"))
	s.events = customevents.New(
		repository.NewFileStore(s.customPath, storeLog),
		customevents.WithLogger(s.logger.Named("custom-events")),
	)
	s.fixturesSnap = repository.NewSnapshotStore(model.SourceFixtures, s.fixturesPath, storeLog)
	s.scheduleSnap = repository.NewSnapshotStore(model.SourceSchedule, s.schedulePath, storeLog)

	clientOpts := []upstream.Option{
		upstream.WithAPIKey(s.apiKey),
		upstream.WithTimeout(s.upstreamTimeout),
		upstream.WithLogger(s.logger.Named("upstream")),
	}
	fixtures := s.fixtureSource
	if fixtures == nil {
		fixtures = upstream.NewFootballClient(s.football, clientOpts...)
	}
	schedule := s.scheduleSource
	if schedule == nil {
		schedule = upstream.NewEsportsClient(s.esports, clientOpts...)
	}

	s.ingest = ingest.New(fixtures, s.fixturesSnap, schedule, s.scheduleSnap,
		ingest.WithLogger(s.logger.Named("ingest")),
		ingest.WithLocation(s.location),
		ingest.WithRefreshTimeout(2*s.upstreamTimeout),
	)
	if s.refreshCron != "" {
		if err := s.ingest.Schedule(s.refreshCron); err != nil {
			return fmt.Errorf("start service: %w", err)
		}
	}

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "calendar service started",
		logger.String("customEvents", s.customPath),
		logger.String("fixtures", s.fixturesPath),
		logger.String("schedule", s.schedulePath),
		logger.String("refreshCron", s.refreshCron),
	)
	return nil
}

// Stop halts scheduled refreshes. A refresh in flight is awaited until ctx
// is done.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	s.logger.Info(ctx, "stopping calendar service")
	return s.ingest.Stop(ctx)
}

// ListCustomEvents returns the stored custom events.
func (s *Service) ListCustomEvents(ctx context.Context) ([]model.CustomEvent, error) {
	m, err := s.manager()
	if err != nil {
		return nil, err
	}
	return m.List(ctx)
}

// CreateCustomEvent stores a new custom event.
func (s *Service) CreateCustomEvent(ctx context.Context, ev model.CustomEvent) (model.CustomEvent, error) {
	m, err := s.manager()
	if err != nil {
		return model.CustomEvent{}, err
	}
	return m.Create(ctx, ev)
}

// UpdateCustomEvent applies patch to the event with the given id.
func (s *Service) UpdateCustomEvent(ctx context.Context, id string, patch model.EventPatch) (model.CustomEvent, error) {
	m, err := s.manager()
	if err != nil {
		return model.CustomEvent{}, err
	}
	return m.Update(ctx, id, patch)
}

// DeleteCustomEvent removes the event with the given id, if any.
func (s *Service) DeleteCustomEvent(ctx context.Context, id string) error {
	m, err := s.manager()
	if err != nil {
		return err
	}
	return m.Delete(ctx, id)
}

// RefreshFixtures fetches fixtures and replaces their snapshot.
func (s *Service) RefreshFixtures(ctx context.Context) ([]model.MatchEvent, error) {
	in, err := s.ingester()
	if err != nil {
		return nil, err
	}
	return in.RefreshFixtures(ctx)
}

// RefreshSchedule fetches the e-sports schedule and replaces its snapshot.
func (s *Service) RefreshSchedule(ctx context.Context) ([]model.MatchEvent, error) {
	in, err := s.ingester()
	if err != nil {
		return nil, err
	}
	return in.RefreshSchedule(ctx)
}

// Calendar merges the three sources and narrows them by q. A source that
// cannot be read contributes nothing.
func (s *Service) Calendar(ctx context.Context, q aggregate.Query) ([]model.DisplayEvent, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	fixtures, err := s.fixturesSnap.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "fixtures unavailable", logger.Error(err))
		fixtures = nil
	}
	schedule, err := s.scheduleSnap.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "schedule unavailable", logger.Error(err))
		schedule = nil
	}
	custom, err := s.events.List(ctx)
	if err != nil {
		s.logger.Warn(ctx, "custom events unavailable", logger.Error(err))
		custom = nil
	}
	return aggregate.Apply(aggregate.Merge(fixtures, schedule, custom), q), nil
}

// NextMatch returns the earliest match starting after now.
func (s *Service) NextMatch(ctx context.Context) (model.DisplayEvent, bool, error) {
	events, err := s.Calendar(ctx, aggregate.Query{})
	if err != nil {
		return model.DisplayEvent{}, false, err
	}
	ev, ok := aggregate.NextMatch(events, s.now())
	return ev, ok, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	started, startedAt := s.started, s.startedAt
	s.mu.RUnlock()

	stats := map[string]any{
		"started":     started,
		"refreshCron": s.refreshCron,
	}
	if !started {
		return stats
	}

	ctx := context.Background()
	stats["uptimeSeconds"] = int64(s.now().Sub(startedAt).Seconds())
	if custom, err := s.events.List(ctx); err == nil {
		stats["customEvents"] = len(custom)
	}
	if fixtures, err := s.fixturesSnap.Load(ctx); err == nil {
		stats["fixtures"] = len(fixtures)
	}
	if schedule, err := s.scheduleSnap.Load(ctx); err == nil {
		stats["schedule"] = len(schedule)
	}
	return stats
}

func (s *Service) manager() (*customevents.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.events, nil
}

func (s *Service) ingester() (*ingest.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.ingest, nil
}
