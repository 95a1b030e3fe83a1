package upstream

import (
	"context"
	"net/url"
	"strings"

	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
)

// EsportsConfig selects the leagues to read and the teams to keep.
type EsportsConfig struct {
	BaseURL   string
	LeagueIDs []string
	TeamCodes []string
}

// EsportsClient reads the LoL esports schedule and keeps the matches of
// followed teams.
type EsportsClient struct {
	ec    EsportsConfig
	codes map[string]struct{}
	cfg   clientConfig
}

// NewEsportsClient returns a client for ec.
func NewEsportsClient(ec EsportsConfig, opts ...Option) *EsportsClient {
	ec.BaseURL = strings.TrimRight(ec.BaseURL, "/")
	codes := make(map[string]struct{}, len(ec.TeamCodes))
	for _, code := range ec.TeamCodes {
		codes[code] = struct{}{}
	}
	return &EsportsClient{ec: ec, codes: codes, cfg: newClientConfig("esports", opts)}
}

type scheduleResponse struct {
	Data struct {
		Schedule struct {
			Events []struct {
				StartTime string `json:"startTime"`
				Type      string `json:"type"`
				Match     *struct {
					Teams []esportsTeam `json:"teams"`
				} `json:"match"`
			} `json:"events"`
		} `json:"schedule"`
	} `json:"data"`
}

type esportsTeam struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Image string `json:"image"`
}

// Schedule fetches the schedule of the configured leagues. Events without
// a match, or whose teams include no followed code, are skipped.
func (c *EsportsClient) Schedule(ctx context.Context) ([]model.MatchEvent, error) {
	q := url.Values{}
	q.Set("leagueId", strings.Join(c.ec.LeagueIDs, ","))

	var body scheduleResponse
	if err := getJSON(ctx, c.cfg, c.ec.BaseURL+"/schedule?"+q.Encode(), &body); err != nil {
		c.cfg.logger.Error(ctx, "fetching schedule failed", logger.Error(err))
		return nil, err
	}
	events := body.Data.Schedule.Events
	if len(events) == 0 {
		return nil, ErrNoSchedule
	}

	out := make([]model.MatchEvent, 0, len(events))
	for _, ev := range events {
		if ev.Match == nil || len(ev.Match.Teams) < 2 || !c.follows(ev.Match.Teams) {
			continue
		}
		t1, t2 := ev.Match.Teams[0], ev.Match.Teams[1]
		out = append(out, model.MatchEvent{
			Title: t1.Code + " vs " + t2.Code,
			Start: ev.StartTime,
			Team1: model.Team{Code: t1.Code, Logo: t1.Image},
			Team2: model.Team{Code: t2.Code, Logo: t2.Image},
		})
	}
	c.cfg.logger.Debug(ctx, "schedule fetched", logger.Int("events", len(events)), logger.Int("kept", len(out)))
	return out, nil
}

func (c *EsportsClient) follows(teams []esportsTeam) bool {
	for _, t := range teams {
		if _, ok := c.codes[t.Code]; ok {
			return true
		}
	}
	return false
}
