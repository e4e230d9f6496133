// Package reminder resolves day and time selections into a single reminder
// date-time and persists it.
package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultMinLead is the minimum lead time for a reminder set for today.
const DefaultMinLead = 60 * time.Minute

const (
	// MinAmount and MaxAmount bound a typed relative amount.
	MinAmount = 1
	MaxAmount = 999999
)

var (
	// ErrNoDay is returned when a time is selected before any day.
	ErrNoDay = errors.New("no day selected")

	// ErrPastDay is returned when a day before today is selected.
	ErrPastDay = errors.New("day is in the past")

	// ErrTooSoon is returned when a same-day time is within the minimum lead.
	ErrTooSoon = errors.New("reminder is too soon")

	// ErrInvalidAmount is returned when a relative amount has no digits.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidUnit is returned for an unknown or inapplicable unit.
	ErrInvalidUnit = errors.New("invalid unit")
)

// Unit is the unit of a relative offset.
type Unit int

const (
	Minute Unit = iota
	Hour
	Day
	Week
	Month
	Year
)

var unitNames = map[Unit]string{
	Minute: "minute",
	Hour:   "hour",
	Day:    "day",
	Week:   "week",
	Month:  "month",
	Year:   "year",
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// IsTimeUnit reports whether u offsets a time of day rather than a date.
func (u Unit) IsTimeUnit() bool {
	return u == Minute || u == Hour
}

// ParseUnit accepts a unit name, its plural, or its one-letter abbreviation.
// Months are "m"/"mo"/"month"; minutes are "min"/"minute".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min", "mins", "minute", "minutes":
		return Minute, nil
	case "h", "hr", "hrs", "hour", "hours":
		return Hour, nil
	case "d", "day", "days":
		return Day, nil
	case "w", "week", "weeks":
		return Week, nil
	case "m", "mo", "month", "months":
		return Month, nil
	case "y", "year", "years":
		return Year, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

// Today returns local midnight of now's date.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Tomorrow returns local midnight of the day after now.
func Tomorrow(now time.Time) time.Time {
	return Today(now).AddDate(0, 0, 1)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DateFromToday offsets today by amount days, weeks, months or years.
// Month and year offsets clamp to the last day of the target month.
func DateFromToday(now time.Time, amount int, unit Unit) (time.Time, error) {
	today := Today(now)
	switch unit {
	case Day:
		return today.AddDate(0, 0, amount), nil
	case Week:
		return today.AddDate(0, 0, 7*amount), nil
	case Month:
		return addMonths(today, amount), nil
	case Year:
		return addMonths(today, 12*amount), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s is not a day unit", ErrInvalidUnit, unit)
}

// TimeFromNow offsets now by amount minutes or hours.
func TimeFromNow(now time.Time, amount int, unit Unit) (time.Time, error) {
	switch unit {
	case Minute:
		return now.Add(time.Duration(amount) * time.Minute), nil
	case Hour:
		return now.Add(time.Duration(amount) * time.Hour), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s is not a time unit", ErrInvalidUnit, unit)
}

// PresetTime returns today at hour:00.
func PresetTime(now time.Time, hour int) time.Time {
	return PickedTime(now, hour, 0)
}

// PickedTime returns today at hour:minute.
func PickedTime(now time.Time, hour, minute int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, now.Location())
}

var presetHours = []int{9, 12, 15, 18, 21}

// PresetHours returns the quick-pick hours. For today only hours after the
// current hour are offered.
func PresetHours(now time.Time, forToday bool) []int {
	hours := make([]int, 0, len(presetHours))
	for _, h := range presetHours {
		if !forToday || now.Hour() < h {
			hours = append(hours, h)
		}
	}
	return hours
}

// ValidAmount reports whether a relative amount may be confirmed.
// Only minute offsets for today are restricted, to at least minLead.
func ValidAmount(forToday bool, amount int, unit Unit, minLead time.Duration) bool {
	if !forToday || unit != Minute {
		return true
	}
	return amount >= int(minLead/time.Minute)
}

// ValidPickedTime reports whether hour:minute may be confirmed. For today the
// time must be strictly after now plus minLead less one minute.
func ValidPickedTime(now time.Time, forToday bool, hour, minute int, minLead time.Duration) bool {
	if !forToday {
		return true
	}
	earliest := now.Add(minLead - time.Minute)
	return PickedTime(now, hour, minute).After(earliest)
}

// SelectableDate reports whether d is on or after minDate's date.
func SelectableDate(minDate, d time.Time) bool {
	return !Today(d).Before(Today(minDate))
}

// SelectableYear reports whether year is not before minDate's year.
func SelectableYear(minDate time.Time, year int) bool {
	return year >= minDate.Year()
}

// ParseAmount strips everything but digits from s and clamps the result to
// [MinAmount, MaxAmount]. ok is false when no digit remains.
func ParseAmount(s string) (amount int, ok bool) {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}

	amount, err := strconv.Atoi(digits.String())
	if err != nil {
		// digits only, so the sole failure is overflow
		return MaxAmount, true
	}
	return min(max(amount, MinAmount), MaxAmount), true
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(d, last)-1)
}
