// Package category owns the event category vocabulary and its default colors.
// Both the store (defaults on create) and the aggregation view (unset colors)
// read from this table.
package category

import "errors"

// Category names.
const (
	Perso   = "perso"
	Travail = "travail"
	RDV     = "rdv"
	Match   = "match"
)

// Neutral is the color used for records without a category.
const Neutral = "#6b7280"

// ErrUnknown is returned for names outside the vocabulary.
var ErrUnknown = errors.New("unknown category")

// Entry is one row of the category table.
type Entry struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

var table = []Entry{
	{Name: Perso, Color: "#3b82f6"},
	{Name: Travail, Color: "#f59e0b"},
	{Name: RDV, Color: "#10b981"},
	{Name: Match, Color: "#ef4444"},
}

// All returns the category table in display order.
func All() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}

// Validate accepts an empty name (no category) or a known one.
func Validate(name string) error {
	if name == "" {
		return nil
	}
	for _, e := range table {
		if e.Name == name {
			return nil
		}
	}
	return ErrUnknown
}

// Color returns the default color of name, or Neutral.
func Color(name string) string {
	for _, e := range table {
		if e.Name == name {
			return e.Color
		}
	}
	return Neutral
}

// Colors fills empty background and border colors. An explicit background
// color is reused for an empty border, as the creation form does.
func Colors(name, background, border string) (string, string) {
	if background == "" {
		background = Color(name)
	}
	if border == "" {
		border = background
	}
	return background, border
}
