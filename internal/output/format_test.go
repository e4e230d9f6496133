package output

import (
	"bytes"
	"testing"
	"time"

	"gtodo/internal/service"
)

func TestFormatTodo(t *testing.T) {
	var buf bytes.Buffer
	FormatTodo(&buf, 3, service.Todo{Title: "Buy\nmilk"})
	FormatTodo(&buf, 12, service.Todo{Title: "  ", IsDone: true})

	expected := "   3  [ ] Buy milk\n  12  [x] (untitled)\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestReminderLabel(t *testing.T) {
	now := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC), "today @ 18:00"},
		{time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), "today @ 09:00 (past)"},
		{time.Date(2026, 10, 16, 9, 5, 0, 0, time.UTC), "tomorrow @ 09:05"},
		{time.Date(2026, 10, 20, 21, 0, 0, 0, time.UTC), "2026-10-20 @ 21:00"},
		{time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC), "2026-10-01 @ 08:00 (past)"},
	}
	for _, tt := range tests {
		if got := ReminderLabel(service.Reminder{At: tt.at}, now); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestFormatTodoDetail(t *testing.T) {
	now := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	FormatTodoDetail(&buf, 1, service.Todo{Title: "Dentist", Description: "bring card"},
		[]service.Reminder{{At: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}}, now)

	expected := "   1  [ ] Dentist\n          bring card\n          @ tomorrow @ 09:00\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestFormatProgress(t *testing.T) {
	var buf bytes.Buffer
	FormatProgress(&buf, "Buy milk", 50)

	expected := "\rremoving Buy milk [##########..........]  50% (Ctrl+C to undo)"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}
