package upstream

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
)

// FootballConfig selects the fixtures to fetch.
type FootballConfig struct {
	BaseURL  string
	TeamID   int
	Next     int
	Timezone string
}

// FootballClient reads upcoming fixtures of one team from api-football.
type FootballClient struct {
	fc  FootballConfig
	cfg clientConfig
}

// NewFootballClient returns a client for fc.
func NewFootballClient(fc FootballConfig, opts ...Option) *FootballClient {
	fc.BaseURL = strings.TrimRight(fc.BaseURL, "/")
	return &FootballClient{fc: fc, cfg: newClientConfig("football", opts)}
}

type fixturesResponse struct {
	Response []struct {
		Fixture struct {
			ID   int    `json:"id"`
			Date string `json:"date"`
		} `json:"fixture"`
		Teams struct {
			Home footballTeam `json:"home"`
			Away footballTeam `json:"away"`
		} `json:"teams"`
	} `json:"response"`
}

type footballTeam struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

func (t footballTeam) team() model.Team {
	return model.Team{ID: t.ID, Name: t.Name, Logo: t.Logo}
}

// Fixtures fetches the next fixtures in upstream order.
func (c *FootballClient) Fixtures(ctx context.Context) ([]model.MatchEvent, error) {
	q := url.Values{}
	q.Set("team", strconv.Itoa(c.fc.TeamID))
	q.Set("next", strconv.Itoa(c.fc.Next))
	q.Set("timezone", c.fc.Timezone)

	var body fixturesResponse
	if err := getJSON(ctx, c.cfg, c.fc.BaseURL+"/v3/fixtures?"+q.Encode(), &body); err != nil {
		c.cfg.logger.Error(ctx, "fetching fixtures failed", logger.Int("team", c.fc.TeamID), logger.Error(err))
		return nil, err
	}

	out := make([]model.MatchEvent, 0, len(body.Response))
	for _, f := range body.Response {
		out = append(out, model.MatchEvent{
			Title: f.Teams.Home.Name + " vs " + f.Teams.Away.Name,
			Start: f.Fixture.Date,
			Team1: f.Teams.Home.team(),
			Team2: f.Teams.Away.team(),
		})
	}
	c.cfg.logger.Debug(ctx, "fixtures fetched", logger.Int("count", len(out)))
	return out, nil
}
