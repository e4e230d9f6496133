// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gtodo/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// ProgressWidth is the number of cells in a progress bar.
	ProgressWidth = 20

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// FormatTodo formats a todo line.
// Format: "{N:>4}  [{x| }] {TITLE}\n"
func FormatTodo(w io.Writer, num int, todo service.Todo) {
	mark := " "
	if todo.IsDone {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s\n", num, mark, normalizeTitle(todo.Title))
}

// FormatTodoDetail formats a todo with its description and reminders.
func FormatTodoDetail(w io.Writer, num int, todo service.Todo, reminders []service.Reminder, now time.Time) {
	FormatTodo(w, num, todo)
	if d := strings.TrimSpace(todo.Description); d != "" {
		for _, line := range strings.Split(d, "\n") {
			fmt.Fprintf(w, "          %s\n", strings.TrimRight(line, "\r"))
		}
	}
	for _, r := range reminders {
		fmt.Fprintf(w, "          @ %s\n", ReminderLabel(r, now))
	}
}

// FormatReminder formats a numbered reminder line.
// Format: "{N:>4}  {LABEL}\n"
func FormatReminder(w io.Writer, num int, r service.Reminder, now time.Time) {
	fmt.Fprintf(w, "%4d  %s\n", num, ReminderLabel(r, now))
}

// ReminderLabel describes r relative to now: "today @ 09:00",
// "tomorrow @ 18:30" or "2026-10-20 @ 09:00", with " (past)" appended
// once it has passed.
func ReminderLabel(r service.Reminder, now time.Time) string {
	var day string
	switch {
	case r.IsForDay(now):
		day = "today"
	case r.IsForDay(now.AddDate(0, 0, 1)):
		day = "tomorrow"
	default:
		day = r.At.Format(dateLayout)
	}
	label := day + " @ " + r.At.Format(timeLayout)
	if r.IsInThePast(now) {
		label += " (past)"
	}
	return label
}

// FormatHeader formats a section header.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeTitle(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatProgress redraws a removal progress line in place.
// Format: "\rremoving {TITLE} [####......] {P:>3}% (Ctrl+C to undo)"
func FormatProgress(w io.Writer, title string, percent int) {
	percent = min(max(percent, 0), 100)
	filled := percent * ProgressWidth / 100
	bar := strings.Repeat("#", filled) + strings.Repeat(".", ProgressWidth-filled)
	fmt.Fprintf(w, "\rremoving %s [%s] %3d%% (Ctrl+C to undo)", normalizeTitle(title), bar, percent)
}

// normalizeTitle normalizes a todo title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
