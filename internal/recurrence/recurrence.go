// Package recurrence derives the next due date of a recurring chore from its
// four-component interval.
//
// Components are applied in the fixed order years, months, weeks, days. Year and
// month additions are calendar-aware and clamp to the last day of the target
// month, so 2024-01-31 plus one month is 2024-02-29 and 2024-02-29 plus one year
// is 2025-02-28. The order matters: adding a month and then days can land on a
// different date than adding the days first.
package recurrence

import (
	"errors"
	"time"
)

// ErrNegativeComponent is returned for intervals with a component below zero.
var ErrNegativeComponent = errors.New("interval components must not be negative")

// Interval is the recurrence period of a task template. The zero value means
// a one-time task.
type Interval struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Weeks  int `json:"weeks"`
	Days   int `json:"days"`
}

// HasInterval reports whether any component is positive.
func (i Interval) HasInterval() bool {
	return i.Years > 0 || i.Months > 0 || i.Weeks > 0 || i.Days > 0
}

// Validate rejects negative components.
func (i Interval) Validate() error {
	if i.Years < 0 || i.Months < 0 || i.Weeks < 0 || i.Days < 0 {
		return ErrNegativeComponent
	}
	return nil
}

// NextDueDate applies the interval to base. A zero interval returns base unchanged.
func NextDueDate(base time.Time, interval Interval) (time.Time, error) {
	if err := interval.Validate(); err != nil {
		return time.Time{}, err
	}

	next := base
	if interval.Years > 0 {
		next = addMonthsClamped(next, interval.Years*12)
	}
	if interval.Months > 0 {
		next = addMonthsClamped(next, interval.Months)
	}
	if interval.Weeks > 0 {
		next = next.AddDate(0, 0, interval.Weeks*7)
	}
	if interval.Days > 0 {
		next = next.AddDate(0, 0, interval.Days)
	}
	return next, nil
}

// Upcoming returns successive occurrences after anchor that fall strictly after
// `after` and no later than `until`, at most limit of them. The anchor itself is
// never returned. A non-recurring interval yields nothing.
func Upcoming(anchor time.Time, interval Interval, after, until time.Time, limit int) ([]time.Time, error) {
	if err := interval.Validate(); err != nil {
		return nil, err
	}
	if !interval.HasInterval() || limit <= 0 {
		return nil, nil
	}

	var dates []time.Time
	current := anchor
	for len(dates) < limit {
		next, err := NextDueDate(current, interval)
		if err != nil {
			return nil, err
		}
		if next.After(until) {
			break
		}
		if next.After(after) {
			dates = append(dates, next)
		}
		current = next
	}
	return dates, nil
}

// addMonthsClamped adds n months keeping the day of month where possible and
// clamping it to the target month's length otherwise.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	total := int(month) - 1 + n
	targetYear := year + total/12
	targetMonth := total % 12
	if targetMonth < 0 {
		targetMonth += 12
		targetYear--
	}

	last := daysIn(time.Month(targetMonth+1), targetYear)
	if day > last {
		day = last
	}
	return time.Date(targetYear, time.Month(targetMonth+1), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
