// Package ics renders the aggregated calendar as an iCalendar feed so it
// can be subscribed to from phone and desktop calendar apps.
package ics

import (
	"crypto/sha1" //nolint:gosec // stable uid derivation, not security
	"encoding/hex"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/okian/agenda/internal/domain/model"
)

const (
	defaultProductID = "-//okian//agenda//EN"
	defaultName      = "Agenda"
	uidDomain        = "agenda"
)

// Option configures an export.
type Option func(*exporter)

type exporter struct {
	productID string
	name      string
	now       func() time.Time
}

// WithName sets the calendar display name.
func WithName(name string) Option {
	return func(e *exporter) {
		if name != "" {
			e.name = name
		}
	}
}

// WithClock sets the DTSTAMP source.
func WithClock(now func() time.Time) Option {
	return func(e *exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// Encode serializes events as a VCALENDAR. Events whose start cannot be
// parsed are left out. Unexpanded recurring events keep their RRULE, while
// expanded occurrences become standalone events with their own UID.
func Encode(events []model.DisplayEvent, opts ...Option) string {
	e := exporter{productID: defaultProductID, name: defaultName, now: time.Now}
	for _, opt := range opts {
		opt(&e)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.productID)
	cal.SetXWRCalName(e.name)

	stamp := e.now().UTC()
	for _, ev := range events {
		start, err := model.ParseTime(ev.Start)
		if err != nil {
			continue
		}
		vevent := cal.AddEvent(UID(ev))
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(start)
		if ev.End != "" {
			if end, err := model.ParseTime(ev.End); err == nil {
				vevent.SetEndAt(end)
			}
		}
		vevent.SetSummary(ev.Title)
		if desc := describe(ev); desc != "" {
			vevent.SetDescription(desc)
		}
		if ev.Category != "" {
			vevent.SetProperty(ical.ComponentPropertyCategories, ev.Category)
		}
		if ev.BackgroundColor != "" {
			vevent.SetProperty(ical.ComponentProperty("COLOR"), ev.BackgroundColor)
		}
		if ev.RRule != "" {
			vevent.SetProperty(ical.ComponentPropertyRrule, ev.RRule)
		}
	}
	return cal.Serialize()
}

// UID returns the stable identifier of ev in the feed. Custom events use
// their id, suffixed with the occurrence start for expanded occurrences.
// Fixtures and schedule entries hash source, title and start.
func UID(ev model.DisplayEvent) string {
	if ev.ID != "" {
		if ev.RecurrenceID != "" {
			return ev.ID + "-" + occurrenceStamp(ev.RecurrenceID) + "@" + uidDomain
		}
		return ev.ID + "@" + uidDomain
	}
	sum := sha1.Sum([]byte(string(ev.Source) + "\x00" + ev.Title + "\x00" + ev.Start)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:10]) + "@" + uidDomain
}

func describe(ev model.DisplayEvent) string {
	if ev.Team1 == nil || ev.Team2 == nil {
		return ""
	}
	parts := []string{ev.Team1.Label(), ev.Team2.Label()}
	if parts[0] == "" || parts[1] == "" {
		return ""
	}
	return strings.Join(parts, " - ") + " (" + string(ev.Source) + ")"
}

func occurrenceStamp(s string) string {
	t, err := model.ParseTime(s)
	if err != nil {
		return strings.NewReplacer("-", "", ":", "").Replace(s)
	}
	return t.UTC().Format("20060102T150405Z")
}
