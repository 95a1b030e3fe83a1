package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/agenda/internal/adapters/upstream"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/okian/agenda/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const fixturesBody = `{"response":[
 {"fixture":{"id":1,"date":"2024-06-02T21:00:00+02:00"},
  "teams":{"home":{"id":529,"name":"Barcelona","logo":"b.png"},"away":{"id":547,"name":"Girona","logo":"g.png"}}},
 {"fixture":{"id":2,"date":"2024-06-09T18:30:00+02:00"},
  "teams":{"home":{"id":536,"name":"Sevilla","logo":"s.png"},"away":{"id":529,"name":"Barcelona","logo":"b.png"}}}
]}`

const scheduleBody = `{"data":{"schedule":{"events":[
 {"startTime":"2024-06-03T16:00:00Z","type":"match","match":{"teams":[{"name":"G2 Esports","code":"G2","image":"g2.png"},{"name":"Fnatic","code":"FNC","image":"fnc.png"}]}},
 {"startTime":"2024-06-03T17:00:00Z","type":"show"},
 {"startTime":"2024-06-03T18:00:00Z","type":"match","match":{"teams":[{"name":"MAD Lions","code":"MAD","image":"m.png"},{"name":"Fnatic","code":"FNC","image":"fnc.png"}]}},
 {"startTime":"2024-06-04T18:00:00Z","type":"match","match":{"teams":[{"name":"Vitality","code":"VIT","image":"v.png"},{"name":"Karmine Corp","code":"KC","image":"kc.png"}]}}
]}}}`

func TestFootballClient(t *testing.T) {
	Convey("Given an api-football server", t, func() {
		var gotReq *http.Request
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotReq = r
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(fixturesBody))
		}))
		defer srv.Close()

		c := upstream.NewFootballClient(upstream.FootballConfig{
			BaseURL: srv.URL + "/", TeamID: 529, Next: 50, Timezone: "Europe/Paris",
		}, upstream.WithAPIKey("secret"), upstream.WithLogger(logger.Nop()))

		Convey("When fetching fixtures", func() {
			got, err := c.Fixtures(context.Background())

			Convey("Then the request carries the team query and RapidAPI headers", func() {
				So(err, ShouldBeNil)
				So(gotReq.URL.Path, ShouldEqual, "/v3/fixtures")
				So(gotReq.URL.Query().Get("team"), ShouldEqual, "529")
				So(gotReq.URL.Query().Get("next"), ShouldEqual, "50")
				So(gotReq.URL.Query().Get("timezone"), ShouldEqual, "Europe/Paris")
				So(gotReq.Header.Get("x-rapidapi-key"), ShouldEqual, "secret")
				So(gotReq.Header.Get("x-rapidapi-host"), ShouldEqual, gotReq.Host)
			})

			Convey("Then fixtures are normalized in upstream order", func() {
				So(got, ShouldResemble, []model.MatchEvent{
					{
						Title: "Barcelona vs Girona", Start: "2024-06-02T21:00:00+02:00",
						Team1: model.Team{ID: 529, Name: "Barcelona", Logo: "b.png"},
						Team2: model.Team{ID: 547, Name: "Girona", Logo: "g.png"},
					},
					{
						Title: "Sevilla vs Barcelona", Start: "2024-06-09T18:30:00+02:00",
						Team1: model.Team{ID: 536, Name: "Sevilla", Logo: "s.png"},
						Team2: model.Team{ID: 529, Name: "Barcelona", Logo: "b.png"},
					},
				})
			})
		})
	})

	Convey("Given an api-football server that refuses the key", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()
		c := upstream.NewFootballClient(upstream.FootballConfig{BaseURL: srv.URL}, upstream.WithLogger(logger.Nop()))

		_, err := c.Fixtures(context.Background())
		So(errors.Is(err, upstream.ErrStatus), ShouldBeTrue)
	})

	Convey("Given an api-football server returning garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer srv.Close()
		c := upstream.NewFootballClient(upstream.FootballConfig{BaseURL: srv.URL}, upstream.WithLogger(logger.Nop()))

		_, err := c.Fixtures(context.Background())
		So(errors.Is(err, upstream.ErrDecode), ShouldBeTrue)
	})
}

func TestEsportsClient(t *testing.T) {
	Convey("Given an e-sports schedule server", t, func() {
		var gotReq *http.Request
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotReq = r
			_, _ = w.Write([]byte(scheduleBody))
		}))
		defer srv.Close()

		c := upstream.NewEsportsClient(upstream.EsportsConfig{
			BaseURL:   srv.URL,
			LeagueIDs: []string{"98767991299243165", "99332500638116286"},
			TeamCodes: []string{"G2", "KC"},
		}, upstream.WithLogger(logger.Nop()))

		Convey("When fetching the schedule", func() {
			got, err := c.Schedule(context.Background())

			Convey("Then leagues are requested together", func() {
				So(err, ShouldBeNil)
				So(gotReq.URL.Path, ShouldEqual, "/schedule")
				So(gotReq.URL.Query().Get("leagueId"), ShouldEqual, "98767991299243165,99332500638116286")
			})

			Convey("Then only matches with a followed team are kept", func() {
				So(got, ShouldResemble, []model.MatchEvent{
					{
						Title: "G2 vs FNC", Start: "2024-06-03T16:00:00Z",
						Team1: model.Team{Code: "G2", Logo: "g2.png"},
						Team2: model.Team{Code: "FNC", Logo: "fnc.png"},
					},
					{
						Title: "VIT vs KC", Start: "2024-06-04T18:00:00Z",
						Team1: model.Team{Code: "VIT", Logo: "v.png"},
						Team2: model.Team{Code: "KC", Logo: "kc.png"},
					},
				})
			})
		})
	})

	Convey("Given an empty schedule", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"schedule":{"events":[]}}}`))
		}))
		defer srv.Close()
		c := upstream.NewEsportsClient(upstream.EsportsConfig{BaseURL: srv.URL}, upstream.WithLogger(logger.Nop()))

		_, err := c.Schedule(context.Background())
		So(errors.Is(err, upstream.ErrNoSchedule), ShouldBeTrue)
	})

	Convey("Given a failing schedule server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		c := upstream.NewEsportsClient(upstream.EsportsConfig{BaseURL: srv.URL}, upstream.WithLogger(logger.Nop()))

		_, err := c.Schedule(context.Background())
		So(errors.Is(err, upstream.ErrStatus), ShouldBeTrue)
	})
}
