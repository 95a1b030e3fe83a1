package ics_test

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/okian/agenda/internal/adapters/ics"
	"github.com/okian/agenda/internal/domain/aggregate"
	"github.com/okian/agenda/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEncode(t *testing.T) {
	Convey("Given an aggregated calendar", t, func() {
		events := aggregate.Merge(
			[]model.MatchEvent{{
				Title: "Barcelona vs Girona", Start: "2024-06-02T21:00:00+02:00",
				Team1: model.Team{ID: 529, Name: "Barcelona"}, Team2: model.Team{ID: 547, Name: "Girona"},
			}},
			nil,
			[]model.CustomEvent{
				{ID: "gym-1", Title: "Gym", Start: "2024-06-01T10:00:00Z", End: "2024-06-01T11:00:00Z", Category: "perso", RRule: "FREQ=WEEKLY;COUNT=4"},
				{ID: "bad", Title: "Broken", Start: "someday"},
			},
		)
		stamp := time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC)

		Convey("When encoding", func() {
			out := ics.Encode(events, ics.WithName("Perso"), ics.WithClock(func() time.Time { return stamp }))

			Convey("Then it is a parseable calendar with one event per valid start", func() {
				cal, err := ical.ParseCalendar(strings.NewReader(out))
				So(err, ShouldBeNil)
				So(len(cal.Events()), ShouldEqual, 2)
				So(out, ShouldContainSubstring, "X-WR-CALNAME:Perso")
			})

			Convey("Then the custom event keeps its id, bounds and rule", func() {
				cal, _ := ical.ParseCalendar(strings.NewReader(out))
				var gym *ical.VEvent
				for _, ev := range cal.Events() {
					if ev.Id() == "gym-1@agenda" {
						gym = ev
					}
				}
				So(gym, ShouldNotBeNil)
				So(gym.GetProperty(ical.ComponentPropertySummary).Value, ShouldEqual, "Gym")
				So(gym.GetProperty(ical.ComponentPropertyRrule).Value, ShouldEqual, "FREQ=WEEKLY;COUNT=4")
				So(gym.GetProperty(ical.ComponentPropertyCategories).Value, ShouldEqual, "perso")
				start, err := gym.GetStartAt()
				So(err, ShouldBeNil)
				So(start.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)), ShouldBeTrue)
				end, err := gym.GetEndAt()
				So(err, ShouldBeNil)
				So(end.Equal(time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})

			Convey("Then the fixture is described by its teams", func() {
				So(out, ShouldContainSubstring, "SUMMARY:Barcelona vs Girona")
				So(out, ShouldContainSubstring, "Barcelona - Girona (fixtures)")
				So(out, ShouldContainSubstring, "DTSTART:20240602T190000Z")
			})
		})

		Convey("When deriving uids", func() {
			Convey("Then they are stable across exports", func() {
				So(ics.UID(events[0]), ShouldEqual, ics.UID(events[0]))
				So(ics.UID(events[0]), ShouldNotEqual, ics.UID(events[1]))
				So(ics.UID(events[1]), ShouldEqual, "gym-1@agenda")
			})
		})
	})
}

func TestEncodeExpandedWindow(t *testing.T) {
	Convey("Given a weekly event expanded over June", t, func() {
		merged := aggregate.Merge(nil, nil, []model.CustomEvent{
			{ID: "w", Title: "Training", Start: "2024-06-03T18:00:00Z", End: "2024-06-03T19:00:00Z", RRule: "FREQ=WEEKLY;COUNT=4"},
		})
		events := aggregate.Apply(merged, aggregate.Query{
			From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		})
		So(len(events), ShouldEqual, 4)

		Convey("When encoding", func() {
			out := ics.Encode(events)
			cal, err := ical.ParseCalendar(strings.NewReader(out))
			So(err, ShouldBeNil)

			Convey("Then every occurrence is a standalone event with a distinct uid", func() {
				uids := map[string]bool{}
				for _, ev := range cal.Events() {
					uids[ev.Id()] = true
					So(ev.GetProperty(ical.ComponentPropertyRrule), ShouldBeNil)
				}
				So(len(uids), ShouldEqual, 4)
				So(uids["w-20240603T180000Z@agenda"], ShouldBeTrue)
				So(uids["w-20240624T180000Z@agenda"], ShouldBeTrue)
				So(out, ShouldNotContainSubstring, "RRULE")
			})
		})
	})
}
