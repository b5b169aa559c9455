// Package datewindow computes the calendar ranges used by listings and
// reminders. All functions convert the reference time into the given
// location first, so results do not depend on the host time zone.
package datewindow

import (
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
)

// Window is an inclusive range of calendar days
type Window struct {
	Start time.Time
	End   time.Time
}

// StartDate returns the first day as YYYY-MM-DD
func (w Window) StartDate() string {
	return w.Start.Format(domain.DateLayout)
}

// EndDate returns the last day as YYYY-MM-DD
func (w Window) EndDate() string {
	return w.End.Format(domain.DateLayout)
}

// Contains reports whether the YYYY-MM-DD date falls inside the window
func (w Window) Contains(date string) bool {
	return date >= w.StartDate() && date <= w.EndDate()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Today is the single day containing now
func Today(now time.Time, loc *time.Location) Window {
	now = now.In(loc)
	return Window{Start: startOfDay(now), End: endOfDay(now)}
}

// Tomorrow is the calendar day after now
func Tomorrow(now time.Time, loc *time.Location) Window {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
	return Window{Start: next, End: endOfDay(next)}
}

// ThisWeek runs from Sunday through Saturday of the week containing now
func ThisWeek(now time.Time, loc *time.Location) Window {
	now = now.In(loc)
	sunday := time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, loc)
	saturday := time.Date(sunday.Year(), sunday.Month(), sunday.Day()+6, 0, 0, 0, 0, loc)
	return Window{Start: sunday, End: endOfDay(saturday)}
}

// NextWeek is the Sunday-Saturday block after ThisWeek, even when now is a Sunday
func NextWeek(now time.Time, loc *time.Location) Window {
	this := ThisWeek(now, loc)
	sunday := time.Date(this.Start.Year(), this.Start.Month(), this.Start.Day()+7, 0, 0, 0, 0, loc)
	saturday := time.Date(sunday.Year(), sunday.Month(), sunday.Day()+6, 0, 0, 0, 0, loc)
	return Window{Start: sunday, End: endOfDay(saturday)}
}

// Month spans the first through last day of month in year.
// The last day is day 0 of the following month.
func Month(month time.Month, year int, loc *time.Location) Window {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	return Window{Start: first, End: endOfDay(last)}
}

// ThisMonth is Month applied to now
func ThisMonth(now time.Time, loc *time.Location) Window {
	now = now.In(loc)
	return Month(now.Month(), now.Year(), loc)
}

// NextMonth is Month applied to the month after now, rolling December into January
func NextMonth(now time.Time, loc *time.Location) Window {
	now = now.In(loc)
	month, year := now.Month()+1, now.Year()
	if month > time.December {
		month, year = time.January, year+1
	}
	return Month(month, year, loc)
}

// DaysAgo returns the YYYY-MM-DD date n days before now
func DaysAgo(now time.Time, n int, loc *time.Location) string {
	now = now.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day()-n, 0, 0, 0, 0, loc).Format(domain.DateLayout)
}
