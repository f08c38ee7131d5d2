// Package item holds the list item model shared by every list kind:
// the note/product/task variants, their persisted encoding, the canonical
// sort order and the textual renderings used by flow cards.
package item

import (
	"time"
)

// Type discriminates the list item variants.
type Type string

const (
	TypeNote    Type = "note"
	TypeProduct Type = "product"
	TypeTask    Type = "task"
)

// Valid reports whether t is one of the known variants.
func (t Type) Valid() bool {
	return t == TypeNote || t == TypeProduct || t == TypeTask
}

// Person identifies who a task is assigned to.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Item is one entry of a list. The populated fields depend on Type:
// notes carry only Content, products add Checked/Category/Quantity and
// tasks add Checked/DueDate/DueTime/Person. ID and Created are assigned
// once at creation and never change.
type Item struct {
	ID       string
	Type     Type
	Created  time.Time
	Checked  bool
	Content  string
	Category string
	Quantity int
	DueDate  string // "2006-01-02", empty when the task has no deadline
	DueTime  string // "15:04", empty for date-only deadlines
	Person   *Person
}

// Completable reports whether the variant carries a checked state.
// Notes have no completion state.
func (it Item) Completable() bool {
	return it.Type == TypeProduct || it.Type == TypeTask
}

// Cutoff is the time-of-day applied to a date-only deadline to obtain
// the effective due instant.
type Cutoff struct {
	Hour, Minute, Second int
}

// EndOfDay is the default cutoff policy for date-only deadlines.
var EndOfDay = Cutoff{Hour: 23, Minute: 59, Second: 59}

// ParseCutoff parses a cutoff policy: the literal "end_of_day" or a
// fixed time of day in "15:04" form.
func ParseCutoff(s string) (Cutoff, error) {
	if s == "" || s == "end_of_day" {
		return EndOfDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Cutoff{}, err
	}
	return Cutoff{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// DueAt resolves the effective due instant of a task under the given
// cutoff policy. The second return is false when the item is not a task,
// has no deadline, or its due fields do not parse. An unparseable due
// date is deliberately treated as "no deadline" rather than an error.
func (it Item) DueAt(cutoff Cutoff, loc *time.Location) (time.Time, bool) {
	if it.Type != TypeTask || it.DueDate == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation("2006-01-02", it.DueDate, loc)
	if err != nil {
		return time.Time{}, false
	}
	if it.DueTime != "" {
		if tod, err := time.Parse("15:04", it.DueTime); err == nil {
			return day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), true
		}
	}
	return day.Add(time.Duration(cutoff.Hour)*time.Hour +
		time.Duration(cutoff.Minute)*time.Minute +
		time.Duration(cutoff.Second)*time.Second), true
}
