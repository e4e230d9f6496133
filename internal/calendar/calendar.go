// Package calendar exports reminders as an iCalendar feed.
package calendar

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"gtodo/internal/service"
)

const (
	// ProductID identifies the generator in the feed.
	ProductID = "-//gtodo//gtodo//EN"

	// EventDuration is the length given to each reminder event.
	EventDuration = 15 * time.Minute
)

// Write renders one event with a display alarm per reminder. Todos without
// reminders are skipped. now is used as the stamp of every event.
func Write(w io.Writer, todos []service.Todo, reminders map[int64][]service.Reminder, now time.Time) error {
	cal := Build(todos, reminders, now)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// Build returns the calendar written by Write.
func Build(todos []service.Todo, reminders map[int64][]service.Reminder, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, todo := range todos {
		for _, r := range reminders[todo.ID] {
			evt := cal.AddEvent(EventUID(r.ID))
			evt.SetDtStampTime(now)
			evt.SetStartAt(r.At)
			evt.SetEndAt(r.At.Add(EventDuration))
			evt.SetSummary(todo.Title)
			if todo.Description != "" {
				evt.SetDescription(todo.Description)
			}

			alarm := evt.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger("-PT0M")
		}
	}
	return cal
}

// EventUID returns the stable UID of the event for reminder id.
func EventUID(id int64) string {
	return fmt.Sprintf("reminder-%d@gtodo", id)
}
