package reminder

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidDay is returned when a day token cannot be parsed.
	ErrInvalidDay = errors.New("invalid day")

	// ErrInvalidTime is returned when a time token cannot be parsed.
	ErrInvalidTime = errors.New("invalid time")
)

const dateLayout = "2006-01-02"

// ParseDay resolves a day token relative to now. Accepted forms are
// "today", "tomorrow", an ISO date (2006-01-02) and a relative offset
// such as "+3d", "+2w", "+1m" or "+1y".
func ParseDay(now time.Time, s string) (time.Time, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	switch token {
	case "":
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDay)
	case "today":
		return Today(now), nil
	case "tomorrow":
		return Tomorrow(now), nil
	}

	if amountStr, unitStr, ok := splitRelative(token); ok {
		amount, ok := ParseAmount(amountStr)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		unit, err := ParseUnit(unitStr)
		if err != nil {
			return time.Time{}, err
		}
		if unit.IsTimeUnit() {
			return time.Time{}, fmt.Errorf("%w: %s is not a day unit", ErrInvalidUnit, unit)
		}
		return DateFromToday(now, amount, unit)
	}

	d, err := time.ParseInLocation(dateLayout, token, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (use today, tomorrow, YYYY-MM-DD or +N[d|w|m|y])", ErrInvalidDay, s)
	}
	if !SelectableDate(now, d) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrPastDay, d.Format(dateLayout))
	}
	return d, nil
}

// ParseTime resolves a time token for the given day. Accepted forms are a
// clock time ("09:30"), a preset hour ("9", "12", "15", "18", "21") and, for
// today only, a relative offset such as "+90m" or "+2h".
//
// Times for today must respect minLead.
func ParseTime(now, day time.Time, s string, minLead time.Duration) (time.Time, error) {
	forToday := SameDay(day, now)
	token := strings.ToLower(strings.TrimSpace(s))
	if token == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTime)
	}

	if amountStr, unitStr, ok := splitRelative(token); ok {
		if !forToday {
			return time.Time{}, fmt.Errorf("%w: relative times are only available for today", ErrInvalidTime)
		}
		amount, ok := ParseAmount(amountStr)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		unit, err := parseTimeUnit(unitStr)
		if err != nil {
			return time.Time{}, err
		}
		if !ValidAmount(forToday, amount, unit, minLead) {
			return time.Time{}, fmt.Errorf("%w: at least %d minutes from now", ErrTooSoon, int(minLead/time.Minute))
		}
		return TimeFromNow(now, amount, unit)
	}

	if hour, err := strconv.Atoi(token); err == nil {
		if !slices.Contains(presetHours, hour) {
			return time.Time{}, fmt.Errorf("%w: %d is not a preset hour (%s)", ErrInvalidTime, hour, joinHours(presetHours))
		}
		if !slices.Contains(PresetHours(now, forToday), hour) {
			return time.Time{}, fmt.Errorf("%w: %02d:00 has already passed", ErrTooSoon, hour)
		}
		return PresetTime(now, hour), nil
	}

	clock, err := time.Parse("15:04", token)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (use HH:MM, a preset hour or +N[m|h])", ErrInvalidTime, s)
	}
	if !ValidPickedTime(now, forToday, clock.Hour(), clock.Minute(), minLead) {
		return time.Time{}, fmt.Errorf("%w: pick a time at least %d minutes from now", ErrTooSoon, int(minLead/time.Minute))
	}
	return PickedTime(now, clock.Hour(), clock.Minute()), nil
}

// splitRelative splits "+12u" into "12" and "u".
func splitRelative(token string) (amount, unit string, ok bool) {
	rest, found := strings.CutPrefix(token, "+")
	if !found {
		return "", "", false
	}
	i := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if i <= 0 {
		return "", "", false
	}
	return rest[:i], strings.TrimSpace(rest[i:]), true
}

// parseTimeUnit reads "m" as minutes, unlike ParseUnit.
func parseTimeUnit(s string) (Unit, error) {
	if s == "m" {
		return Minute, nil
	}
	unit, err := ParseUnit(s)
	if err != nil {
		return 0, err
	}
	if !unit.IsTimeUnit() {
		return 0, fmt.Errorf("%w: %s is not a time unit", ErrInvalidUnit, unit)
	}
	return unit, nil
}

func joinHours(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = strconv.Itoa(h)
	}
	return strings.Join(parts, ", ")
}
