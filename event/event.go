// Package event lists public holidays that fall inside a reporting window
package event

import (
	"errors"
	"sort"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/jp"
)

var (
	ErrStartAfterEnd = errors.New("event start time is after end time")
	ErrUnsetTime     = errors.New("unset event start or end time")
	ErrNoEventName   = errors.New("no event name")
)

// Event represents a named day long time span
type Event struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// Holidays returns the Japanese public holidays observed between start and end inclusive,
// ordered by date
func Holidays(start, end time.Time) []Event {
	var events []Event
	for _, hol := range jp.Holidays {
		events = append(events, Holiday(hol, start, end)...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events
}

// Holiday returns every occurrence of hol between start and end inclusive. When the holiday is
// observed on a different day, the substitute day is returned as its own event. Dates are
// compared by calendar day in the location of start.
func Holiday(hol *cal.Holiday, start, end time.Time) []Event {
	loc := start.Location()
	first := day(start, loc)
	last := day(end, loc)
	inWindow := func(d time.Time) bool {
		return !d.Before(first) && !d.After(last)
	}

	events := []Event{}
	add := func(e Event) {
		if e.Valid() == nil {
			events = append(events, e)
		}
	}
	for year := start.Year(); year <= end.Year(); year++ {
		actual, observed := hol.Calc(year)
		if actual.IsZero() {
			continue
		}
		a := day(actual, loc)
		if inWindow(a) {
			add(NewEvent(hol.Name, a, a.AddDate(0, 0, 1)))
		}
		if observed.IsZero() {
			continue
		}
		if o := day(observed, loc); !o.Equal(a) && inWindow(o) {
			add(NewEvent(hol.Name+" (振替休日)", o, o.AddDate(0, 0, 1)))
		}
	}
	return events
}

// day truncates t to midnight of its calendar date expressed in loc
func day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
