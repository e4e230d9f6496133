// Package service defines the backend-agnostic storage contract for todos and reminders.
package service

import (
	"errors"
	"time"
)

const (
	// TitleMaxChars is the maximum title length in characters.
	TitleMaxChars = 50

	// DescriptionMaxChars is the maximum description length in characters.
	DescriptionMaxChars = 2000
)

var (
	// ErrNotFound is returned when a todo or reminder does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyTitle is returned when a todo without a title is saved.
	ErrEmptyTitle = errors.New("title cannot be empty")
)

// Todo represents a single to-do item.
// ID is 0 until storage assigns one.
type Todo struct {
	ID          int64
	Title       string
	Description string
	IsDone      bool
}

// Reminder is a point in time attached to exactly one todo.
// At is local wall time with minute resolution.
type Reminder struct {
	ID     int64
	TodoID int64
	At     time.Time
}

// IsForDay reports whether the reminder falls on the same calendar day as day.
func (r Reminder) IsForDay(day time.Time) bool {
	y1, m1, d1 := r.At.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsInThePast reports whether the reminder time is before now.
func (r Reminder) IsInThePast(now time.Time) bool {
	return r.At.Before(now)
}
