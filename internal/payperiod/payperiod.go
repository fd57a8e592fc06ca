// Package payperiod computes the calendar date ranges of weekly and biweekly
// pay periods. Ranges are inclusive on both ends.
package payperiod

import (
	"fmt"
	"time"
)

// Period is one pay period, [Start, End] inclusive, at date granularity.
type Period struct {
	Start time.Time
	End   time.Time
}

// Calculator yields the pay period containing a given date.
type Calculator interface {
	Get(date time.Time) Period
	Current() Period
	Previous() Period
}

// New builds a calculator from an account's settings. The reference date is
// a user-supplied first day of some pay period; for weekly periods only its
// weekday matters.
func New(periodType string, referenceDate time.Time) (Calculator, error) {
	switch periodType {
	case "weekly":
		return Weekly{StartDay: referenceDate.Weekday()}, nil
	case "biweekly":
		return BiWeekly{Reference: dateOnly(referenceDate)}, nil
	default:
		return nil, fmt.Errorf("unknown pay period type %q", periodType)
	}
}

// Weekly periods run StartDay through the day before the next StartDay.
type Weekly struct {
	StartDay time.Weekday
}

func (w Weekly) Get(date time.Time) Period {
	beginning := dateOnly(date).AddDate(0, 0, -daysSince(date.Weekday(), w.StartDay))
	return Period{Start: beginning, End: beginning.AddDate(0, 0, 6)}
}

func (w Weekly) Current() Period {
	return w.Get(time.Now())
}

func (w Weekly) Previous() Period {
	return w.Get(time.Now().AddDate(0, 0, -7))
}

// BiWeekly periods are fourteen days anchored on a reference start date.
type BiWeekly struct {
	Reference time.Time
}

func (b BiWeekly) Get(date time.Time) Period {
	beginning := dateOnly(date).AddDate(0, 0, -daysSince(date.Weekday(), b.Reference.Weekday()))

	// The week-aligned candidate is either an exact two-week multiple from
	// the reference date or the middle of a period; back up a week if so.
	if daysBetween(b.Reference, beginning) != 0 {
		beginning = beginning.AddDate(0, 0, -7)
	}
	return Period{Start: beginning, End: beginning.AddDate(0, 0, 13)}
}

func (b BiWeekly) Current() Period {
	return b.Get(time.Now())
}

func (b BiWeekly) Previous() Period {
	return b.Get(time.Now().AddDate(0, 0, -14))
}

// dateOnly truncates to midnight UTC so day arithmetic is immune to DST.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysSince(day, since time.Weekday) int {
	return ((int(day) - int(since)) % 7 + 7) % 7
}

// daysBetween is the day distance from..to modulo one biweekly cycle.
func daysBetween(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	return (days%14 + 14) % 14
}
