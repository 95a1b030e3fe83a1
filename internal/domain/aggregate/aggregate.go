// Package aggregate merges fixtures, schedule and custom events into the
// single list the calendar renders.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/agenda/internal/domain/category"
	"github.com/okian/agenda/internal/domain/model"
	"github.com/teambition/rrule-go"
)

// maxOccurrences caps the expansion of a single recurring event.
const maxOccurrences = 1000

// Merge concatenates fixtures, schedule and custom events in that order.
// Each source keeps its relative order, records without a start are
// dropped and nothing is deduplicated across sources. A nil source is an
// empty one.
func Merge(fixtures, schedule []model.MatchEvent, custom []model.CustomEvent) []model.DisplayEvent {
	out := make([]model.DisplayEvent, 0, len(fixtures)+len(schedule)+len(custom))
	out = appendMatches(out, fixtures, model.SourceFixtures)
	out = appendMatches(out, schedule, model.SourceSchedule)
	for _, ev := range custom {
		if strings.TrimSpace(ev.Start) == "" {
			continue
		}
		bg, border := category.Colors(ev.Category, ev.BackgroundColor, ev.BorderColor)
		out = append(out, model.DisplayEvent{
			ID:              ev.ID,
			Title:           ev.Title,
			Start:           ev.Start,
			End:             ev.End,
			Category:        ev.Category,
			BackgroundColor: bg,
			BorderColor:     border,
			Source:          model.SourceCustom,
			RRule:           ev.RRule,
		})
	}
	return out
}

func appendMatches(out []model.DisplayEvent, matches []model.MatchEvent, src model.Source) []model.DisplayEvent {
	color := category.Color(category.Match)
	for _, m := range matches {
		if strings.TrimSpace(m.Start) == "" {
			continue
		}
		team1, team2 := m.Team1, m.Team2
		out = append(out, model.DisplayEvent{
			Title:           m.Title,
			Start:           m.Start,
			Category:        category.Match,
			BackgroundColor: color,
			BorderColor:     color,
			Source:          src,
			Team1:           &team1,
			Team2:           &team2,
		})
	}
	return out
}

// Filter keeps the events of one category. An empty name keeps everything.
func Filter(events []model.DisplayEvent, name string) []model.DisplayEvent {
	if name == "" {
		return events
	}
	out := make([]model.DisplayEvent, 0, len(events))
	for _, ev := range events {
		if ev.Category == name {
			out = append(out, ev)
		}
	}
	return out
}

// NextMatch returns the earliest match-category event starting strictly
// after now.
func NextMatch(events []model.DisplayEvent, now time.Time) (model.DisplayEvent, bool) {
	var (
		best     model.DisplayEvent
		bestTime time.Time
		found    bool
	)
	for _, ev := range events {
		if ev.Category != category.Match {
			continue
		}
		start, err := model.ParseTime(ev.Start)
		if err != nil || !start.After(now) {
			continue
		}
		if !found || start.Before(bestTime) {
			best, bestTime, found = ev, start, true
		}
	}
	return best, found
}

// Expand replaces every event carrying a recurrence rule with its
// occurrences inside [from, to], in place of the original record.
// Occurrences keep the source event's id and duration, drop the rule and
// record their start as RecurrenceID. Events without a rule pass through
// unchanged.
func Expand(events []model.DisplayEvent, from, to time.Time) []model.DisplayEvent {
	out := make([]model.DisplayEvent, 0, len(events))
	for _, ev := range events {
		if ev.RRule == "" {
			out = append(out, ev)
			continue
		}
		out = append(out, occurrences(ev, from, to)...)
	}
	return out
}

// SortByStart orders events by start time. Unparseable starts keep their
// position relative to each other.
func SortByStart(events []model.DisplayEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, errA := model.ParseTime(events[i].Start)
		b, errB := model.ParseTime(events[j].Start)
		if errA != nil || errB != nil {
			return false
		}
		return a.Before(b)
	})
}

func occurrences(ev model.DisplayEvent, from, to time.Time) []model.DisplayEvent {
	start, err := model.ParseTime(ev.Start)
	if err != nil {
		return []model.DisplayEvent{ev}
	}
	opt, err := rrule.StrToROption(ev.RRule)
	if err != nil {
		return []model.DisplayEvent{ev}
	}
	opt.Dtstart = start
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return []model.DisplayEvent{ev}
	}

	var duration time.Duration
	if ev.End != "" {
		if end, err := model.ParseTime(ev.End); err == nil && !end.Before(start) {
			duration = end.Sub(start)
		}
	}

	times := rule.Between(from, to, true)
	if len(times) > maxOccurrences {
		times = times[:maxOccurrences]
	}
	out := make([]model.DisplayEvent, 0, len(times))
	for _, t := range times {
		occ := ev
		occ.RRule = ""
		occ.Start = t.Format(time.RFC3339)
		occ.RecurrenceID = occ.Start
		if ev.End != "" {
			occ.End = t.Add(duration).Format(time.RFC3339)
		}
		out = append(out, occ)
	}
	return out
}

// Query narrows an aggregated list. A zero window disables recurrence
// expansion and keeps stored order.
type Query struct {
	Category string
	From     time.Time
	To       time.Time
}

// HasWindow reports whether both window bounds are set.
func (q Query) HasWindow() bool {
	return !q.From.IsZero() && !q.To.IsZero()
}

// Apply filters events by category and, when the query has a window,
// expands recurring events and orders the result by start.
func Apply(events []model.DisplayEvent, q Query) []model.DisplayEvent {
	out := Filter(events, q.Category)
	if !q.HasWindow() {
		return out
	}
	out = Expand(out, q.From, q.To)
	SortByStart(out)
	return out
}
