// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"strings"
	"time"
)

// Source names one of the three collections merged into the calendar.
type Source string

const (
	SourceFixtures Source = "fixtures"
	SourceSchedule Source = "schedule"
	SourceCustom   Source = "custom"
)

// CustomEvent is a user-created calendar entry. ID is the only key used to
// match updates and deletes.
type CustomEvent struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end,omitempty"`
	Category        string `json:"category,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
	RRule           string `json:"rrule,omitempty"`
}

// EventPatch carries a partial update. A nil field was not present in the
// request (or was null) and keeps its stored value. A pointer to the empty
// string clears the optional fields End, Category, BackgroundColor,
// BorderColor and RRule.
type EventPatch struct {
	Title           *string `json:"title,omitempty"`
	Start           *string `json:"start,omitempty"`
	End             *string `json:"end,omitempty"`
	Category        *string `json:"category,omitempty"`
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	BorderColor     *string `json:"borderColor,omitempty"`
	RRule           *string `json:"rrule,omitempty"`
}

// Apply returns ev with every non-nil patch field copied over it.
func (p EventPatch) Apply(ev CustomEvent) CustomEvent {
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.Start != nil {
		ev.Start = *p.Start
	}
	if p.End != nil {
		ev.End = *p.End
	}
	if p.Category != nil {
		ev.Category = *p.Category
	}
	if p.BackgroundColor != nil {
		ev.BackgroundColor = *p.BackgroundColor
	}
	if p.BorderColor != nil {
		ev.BorderColor = *p.BorderColor
	}
	if p.RRule != nil {
		ev.RRule = *p.RRule
	}
	return ev
}

// IsEmpty reports whether the patch carries no field at all.
func (p EventPatch) IsEmpty() bool {
	return p == EventPatch{}
}

// Team is one side of a fixture. Football sources fill ID and Name, e-sports
// sources fill Code.
type Team struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
	Logo string `json:"logo,omitempty"`
}

// Label returns the short display name of the team.
func (t Team) Label() string {
	if t.Code != "" {
		return t.Code
	}
	return t.Name
}

// MatchEvent is a normalized fixture or schedule record. Snapshots of these
// are replaced wholesale on every successful upstream fetch.
type MatchEvent struct {
	Title string `json:"title"`
	Start string `json:"start"`
	Team1 Team   `json:"team1"`
	Team2 Team   `json:"team2"`
}

// DisplayEvent is one row of the aggregated calendar. An expanded
// occurrence of a recurring event carries no RRule and sets RecurrenceID to
// its own start.
type DisplayEvent struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end,omitempty"`
	Category        string `json:"category,omitempty"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	Source          Source `json:"source"`
	RRule           string `json:"rrule,omitempty"`
	RecurrenceID    string `json:"recurrenceId,omitempty"`
	Team1           *Team  `json:"team1,omitempty"`
	Team2           *Team  `json:"team2,omitempty"`
}

// ErrInvalidTime is returned by ParseTime for unrecognized layouts.
var ErrInvalidTime = errors.New("invalid timestamp")

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses the ISO-8601 forms the calendar widget emits. Values
// without a zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTime
}
