package service

import (
	"time"

	"github.com/okian/agenda/internal/adapters/upstream"
	"github.com/okian/agenda/internal/app/ingest"
	"github.com/okian/agenda/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDataPaths sets the custom-event collection and the two snapshot files.
// Empty paths keep their default.
func WithDataPaths(custom, fixtures, schedule string) Option {
	return func(s *Service) {
		if custom != "" {
			s.customPath = custom
		}
		if fixtures != "" {
			s.fixturesPath = fixtures
		}
		if schedule != "" {
			s.schedulePath = schedule
		}
	}
}

// WithFootball configures the fixtures upstream.
func WithFootball(cfg upstream.FootballConfig) Option {
	return func(s *Service) {
		s.football = cfg
	}
}

// WithEsports configures the schedule upstream.
func WithEsports(cfg upstream.EsportsConfig) Option {
	return func(s *Service) {
		s.esports = cfg
	}
}

// WithAPIKey sets the RapidAPI key sent to both upstreams.
func WithAPIKey(key string) Option {
	return func(s *Service) {
		s.apiKey = key
	}
}

// WithUpstreamTimeout bounds each upstream request.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.upstreamTimeout = d
		}
	}
}

// WithRefreshCron enables scheduled refresh of both snapshots.
func WithRefreshCron(spec string) Option {
	return func(s *Service) {
		s.refreshCron = spec
	}
}

// WithLocation sets the zone used by the refresh schedule.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock sets the time source used to find the next match.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFixtureSource replaces the football client.
func WithFixtureSource(src ingest.FixtureSource) Option {
	return func(s *Service) {
		s.fixtureSource = src
	}
}

// WithScheduleSource replaces the e-sports client.
func WithScheduleSource(src ingest.ScheduleSource) Option {
	return func(s *Service) {
		s.scheduleSource = src
	}
}
