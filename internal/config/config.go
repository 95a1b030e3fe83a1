// Package config defines service configuration and its defaults.
package config

import (
	"path/filepath"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir holds the custom events file and both upstream snapshots.
	DataDir string `koanf:"data_dir"`

	// CustomEventsFile, FixturesFile and ScheduleFile are file names
	// resolved against DataDir unless absolute.
	CustomEventsFile string `koanf:"custom_events_file"`
	FixturesFile     string `koanf:"fixtures_file"`
	ScheduleFile     string `koanf:"schedule_file"`

	// RapidAPIKey authenticates both upstreams.
	RapidAPIKey string `koanf:"rapidapi_key"`

	// Timezone is passed to api-football and used for cron schedules.
	Timezone string `koanf:"timezone"`

	FootballBaseURL string `koanf:"football_base_url"`
	FootballTeamID  int    `koanf:"football_team_id"`
	FootballNext    int    `koanf:"football_next"`

	EsportsBaseURL   string   `koanf:"esports_base_url"`
	EsportsLeagueIDs []string `koanf:"esports_league_ids"`
	EsportsTeamCodes []string `koanf:"esports_team_codes"`

	// UpstreamTimeoutMS bounds a single upstream request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// RefreshCron schedules a refresh of both snapshots. Empty disables it.
	RefreshCron string `koanf:"refresh_cron"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DataDir:           "public",
		CustomEventsFile:  "calendar-custom.json",
		FixturesFile:      "calendar-barcelona.json",
		ScheduleFile:      "calendar-esport.json",
		Timezone:          "Europe/Paris",
		FootballBaseURL:   "https://api-football-v1.p.rapidapi.com",
		FootballTeamID:    529,
		FootballNext:      50,
		EsportsBaseURL:    "https://league-of-legends-esports.p.rapidapi.com",
		EsportsLeagueIDs:  []string{"98767991299243165", "99332500638116286", "98767991302996019"},
		EsportsTeamCodes:  []string{"G2", "KC"},
		UpstreamTimeoutMS: 10_000,
	}
}

// UpstreamTimeout returns UpstreamTimeoutMS as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CustomEventsPath returns the custom events file path.
func (c *Config) CustomEventsPath() string { return c.resolve(c.CustomEventsFile) }

// FixturesPath returns the fixtures snapshot path.
func (c *Config) FixturesPath() string { return c.resolve(c.FixturesFile) }

// SchedulePath returns the e-sports schedule snapshot path.
func (c *Config) SchedulePath() string { return c.resolve(c.ScheduleFile) }

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
