package aggregate_test

import (
	"testing"
	"time"

	"github.com/okian/agenda/internal/domain/aggregate"
	"github.com/okian/agenda/internal/domain/category"
	"github.com/okian/agenda/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func titles(events []model.DisplayEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Title)
	}
	return out
}

func TestMerge(t *testing.T) {
	Convey("Given three sources", t, func() {
		fixtures := []model.MatchEvent{
			{Title: "Barcelona vs Girona", Start: "2024-06-02T21:00:00+02:00", Team1: model.Team{ID: 529, Name: "Barcelona"}},
			{Title: "no start"},
			{Title: "Sevilla vs Barcelona", Start: "2024-06-09T21:00:00+02:00"},
		}
		schedule := []model.MatchEvent{
			{Title: "G2 vs KC", Start: "2024-06-03T18:00:00Z", Team1: model.Team{Code: "G2"}, Team2: model.Team{Code: "KC"}},
		}
		custom := []model.CustomEvent{
			{ID: "a", Title: "Gym", Start: "2024-06-01T10:00:00Z", Category: "perso"},
			{ID: "b", Title: "Draft", Start: ""},
			{ID: "c", Title: "Plain", Start: "2024-06-01T12:00:00Z"},
			{ID: "d", Title: "Colored", Start: "2024-06-01T13:00:00Z", Category: "rdv", BackgroundColor: "#abcdef", BorderColor: "#abcdef"},
		}

		Convey("When merging", func() {
			got := aggregate.Merge(fixtures, schedule, custom)

			Convey("Then each source keeps its order and missing starts are dropped", func() {
				So(titles(got), ShouldResemble, []string{
					"Barcelona vs Girona", "Sevilla vs Barcelona", "G2 vs KC", "Gym", "Plain", "Colored",
				})
			})

			Convey("Then sources and categories are tagged", func() {
				So(got[0].Source, ShouldEqual, model.SourceFixtures)
				So(got[0].Category, ShouldEqual, category.Match)
				So(got[0].Team1.ID, ShouldEqual, 529)
				So(got[2].Source, ShouldEqual, model.SourceSchedule)
				So(got[2].Team2.Code, ShouldEqual, "KC")
				So(got[3].Source, ShouldEqual, model.SourceCustom)
				So(got[3].ID, ShouldEqual, "a")
			})

			Convey("Then unset colors come from the category table", func() {
				So(got[0].BackgroundColor, ShouldEqual, "#ef4444")
				So(got[3].BackgroundColor, ShouldEqual, "#3b82f6")
				So(got[4].BackgroundColor, ShouldEqual, category.Neutral)
				So(got[5].BackgroundColor, ShouldEqual, "#abcdef")
			})
		})

		Convey("When the custom source is absent", func() {
			got := aggregate.Merge(fixtures, schedule, nil)

			Convey("Then fixtures and schedule are returned unmodified in order", func() {
				So(titles(got), ShouldResemble, []string{"Barcelona vs Girona", "Sevilla vs Barcelona", "G2 vs KC"})
			})
		})

		Convey("When every source is absent", func() {
			got := aggregate.Merge(nil, nil, nil)
			So(got, ShouldNotBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("When a custom event duplicates a fixture", func() {
			dup := []model.CustomEvent{{ID: "x", Title: fixtures[0].Title, Start: fixtures[0].Start, Category: "match"}}
			got := aggregate.Merge(fixtures[:1], nil, dup)

			Convey("Then both are kept", func() {
				So(len(got), ShouldEqual, 2)
			})
		})
	})
}

func TestFilterAndNextMatch(t *testing.T) {
	Convey("Given an aggregated list", t, func() {
		events := aggregate.Merge(
			[]model.MatchEvent{
				{Title: "past", Start: "2024-05-01T20:00:00Z"},
				{Title: "later", Start: "2024-06-20T20:00:00Z"},
			},
			[]model.MatchEvent{{Title: "sooner", Start: "2024-06-10T18:00:00Z"}},
			[]model.CustomEvent{
				{ID: "a", Title: "Gym", Start: "2024-06-05T10:00:00Z", Category: "perso"},
				{ID: "b", Title: "Five-a-side", Start: "2024-06-08T19:00:00Z", Category: "match"},
			},
		)
		now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

		Convey("When filtering by category", func() {
			So(titles(aggregate.Filter(events, "perso")), ShouldResemble, []string{"Gym"})
			So(len(aggregate.Filter(events, "")), ShouldEqual, len(events))
			So(aggregate.Filter(events, "travail"), ShouldBeEmpty)
		})

		Convey("When looking for the next match", func() {
			next, ok := aggregate.NextMatch(events, now)

			Convey("Then the earliest future match of any source is returned", func() {
				So(ok, ShouldBeTrue)
				So(next.Title, ShouldEqual, "Five-a-side")
			})
		})

		Convey("When every match is in the past", func() {
			_, ok := aggregate.NextMatch(events, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
			So(ok, ShouldBeFalse)
		})
	})
}

func TestExpand(t *testing.T) {
	Convey("Given a weekly recurring custom event", t, func() {
		events := aggregate.Merge(nil, nil, []model.CustomEvent{
			{ID: "one", Title: "Once", Start: "2024-06-05T09:00:00Z"},
			{ID: "w", Title: "Training", Start: "2024-06-03T18:00:00Z", End: "2024-06-03T19:30:00Z", RRule: "FREQ=WEEKLY;COUNT=4"},
		})
		from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

		Convey("When expanding over two weeks", func() {
			got := aggregate.Expand(events, from, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

			Convey("Then occurrences replace the rule in place", func() {
				So(len(got), ShouldEqual, 3)
				So(got[0].Title, ShouldEqual, "Once")
				So(got[1].Start, ShouldEqual, "2024-06-03T18:00:00Z")
				So(got[1].End, ShouldEqual, "2024-06-03T19:30:00Z")
				So(got[2].Start, ShouldEqual, "2024-06-10T18:00:00Z")
				So(got[2].End, ShouldEqual, "2024-06-10T19:30:00Z")
				So(got[2].ID, ShouldEqual, "w")
			})

			Convey("And each occurrence drops the rule and records its own start", func() {
				So(got[0].RecurrenceID, ShouldBeEmpty)
				for _, occ := range got[1:] {
					So(occ.RRule, ShouldBeEmpty)
					So(occ.RecurrenceID, ShouldEqual, occ.Start)
				}
			})

			Convey("And sorting orders by start", func() {
				aggregate.SortByStart(got)
				So(titles(got), ShouldResemble, []string{"Training", "Once", "Training"})
			})
		})

		Convey("When the window covers the whole rule", func() {
			got := aggregate.Expand(events, from, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
			So(len(got), ShouldEqual, 5)
		})

		Convey("When the rule is unusable", func() {
			broken := []model.DisplayEvent{{Title: "Broken", Start: "2024-06-03T18:00:00Z", RRule: "FREQ=NEVER"}}
			got := aggregate.Expand(broken, from, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))

			Convey("Then the event passes through once", func() {
				So(got, ShouldResemble, broken)
			})
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given fixtures and a recurring personal event", t, func() {
		events := aggregate.Merge(
			[]model.MatchEvent{{Title: "Barcelona vs Girona", Start: "2024-06-08T21:00:00Z"}},
			nil,
			[]model.CustomEvent{{ID: "w", Title: "Training", Start: "2024-06-03T18:00:00Z", Category: "perso", RRule: "FREQ=DAILY;COUNT=3"}},
		)

		Convey("When the query has no window", func() {
			got := aggregate.Apply(events, aggregate.Query{})

			Convey("Then the rule is left unexpanded in stored order", func() {
				So(len(got), ShouldEqual, 2)
				So(got[1].RRule, ShouldEqual, "FREQ=DAILY;COUNT=3")
			})
		})

		Convey("When the query has a window and a category", func() {
			got := aggregate.Apply(events, aggregate.Query{
				Category: "perso",
				From:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				To:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
			})

			Convey("Then only the expanded personal occurrences remain", func() {
				So(len(got), ShouldEqual, 3)
				So(got[0].Start, ShouldEqual, "2024-06-03T18:00:00Z")
				So(got[2].Start, ShouldEqual, "2024-06-05T18:00:00Z")
			})
		})

		Convey("When only one bound is set", func() {
			q := aggregate.Query{From: time.Now()}
			So(q.HasWindow(), ShouldBeFalse)
		})
	})
}
