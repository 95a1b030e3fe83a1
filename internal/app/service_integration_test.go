package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/agenda/internal/adapters/http/api"
	"github.com/okian/agenda/internal/adapters/upstream"
	service "github.com/okian/agenda/internal/app"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const fixturesBody = `{"response":[
  {"fixture":{"id":1,"date":"2024-06-08T21:00:00+02:00"},
   "teams":{"home":{"id":529,"name":"Barcelona","logo":"b.png"},"away":{"id":547,"name":"Girona","logo":"g.png"}}}
]}`

const scheduleBody = `{"data":{"schedule":{"events":[
  {"startTime":"2024-06-03T18:00:00Z","type":"match","match":{"teams":[{"code":"G2","image":"g2.png"},{"code":"KC","image":"kc.png"}]}},
  {"startTime":"2024-06-03T20:00:00Z","type":"match","match":{"teams":[{"code":"FNC"},{"code":"MKOI"}]}},
  {"startTime":"2024-06-04T18:00:00Z","type":"show"}
]}}}`

func TestServiceIntegration(t *testing.T) {
	Convey("Given the service behind the HTTP API with fake upstreams", t, func() {
		upstreams := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("x-rapidapi-key") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			switch {
			case strings.HasPrefix(r.URL.Path, "/football/v3/fixtures"):
				_, _ = w.Write([]byte(fixturesBody))
			case strings.HasPrefix(r.URL.Path, "/esports/schedule"):
				_, _ = w.Write([]byte(scheduleBody))
			default:
				http.NotFound(w, r)
			}
		}))
		defer upstreams.Close()

		dir := t.TempDir()
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithDataPaths(
				filepath.Join(dir, "calendar-custom.json"),
				filepath.Join(dir, "calendar-barcelona.json"),
				filepath.Join(dir, "calendar-esport.json"),
			),
			service.WithAPIKey("secret"),
			service.WithUpstreamTimeout(2*time.Second),
			service.WithFootball(upstream.FootballConfig{BaseURL: upstreams.URL + "/football", TeamID: 529, Next: 10, Timezone: "Europe/Paris"}),
			service.WithEsports(upstream.EsportsConfig{BaseURL: upstreams.URL + "/esports", LeagueIDs: []string{"98767991302996019"}, TeamCodes: []string{"G2", "KC"}}),
			service.WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc, api.WithLogger(logger.Nop())).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		get := func(path string, out any) int {
			resp, err := http.Get(srv.URL + path)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			if out != nil {
				So(json.NewDecoder(resp.Body).Decode(out), ShouldBeNil)
			}
			return resp.StatusCode
		}

		Convey("When both match sources are refreshed through the API", func() {
			var fixtures struct {
				Success bool               `json:"success"`
				Matches []model.MatchEvent `json:"matches"`
			}
			So(get("/api/barcelona-matches", &fixtures), ShouldEqual, http.StatusOK)
			var schedule struct {
				Success bool               `json:"success"`
				Events  []model.MatchEvent `json:"events"`
			}
			So(get("/api/league-matches", &schedule), ShouldEqual, http.StatusOK)

			Convey("Then the upstream records are normalized", func() {
				So(fixtures.Matches, ShouldHaveLength, 1)
				So(fixtures.Matches[0].Title, ShouldEqual, "Barcelona vs Girona")
				So(fixtures.Matches[0].Team1.Logo, ShouldEqual, "b.png")
				So(schedule.Events, ShouldHaveLength, 1)
				So(schedule.Events[0].Title, ShouldEqual, "G2 vs KC")
			})

			Convey("Then the aggregated calendar carries them", func() {
				var cal struct {
					Events []model.DisplayEvent `json:"events"`
				}
				So(get("/api/calendar?category=match", &cal), ShouldEqual, http.StatusOK)
				So(cal.Events, ShouldHaveLength, 2)

				var next struct {
					Event *model.DisplayEvent `json:"event"`
				}
				So(get("/api/next-match", &next), ShouldEqual, http.StatusOK)
				So(next.Event.Title, ShouldEqual, "G2 vs KC")
			})
		})

		Convey("When an upstream rejects the key", func() {
			bad := service.New(
				service.WithLogger(logger.Nop()),
				service.WithDataPaths(filepath.Join(dir, "c.json"), filepath.Join(dir, "f.json"), filepath.Join(dir, "s.json")),
				service.WithFootball(upstream.FootballConfig{BaseURL: upstreams.URL + "/football", TeamID: 529, Next: 10}),
			)
			So(bad.Start(ctx), ShouldBeNil)
			defer func() { _ = bad.Stop(ctx) }()
			_, err := bad.RefreshFixtures(ctx)

			Convey("Then the refresh fails with a status error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "401")
			})
		})
	})
}
