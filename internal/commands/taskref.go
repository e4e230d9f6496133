package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"gtodo/internal/service"
)

var (
	// ErrRefRequired indicates no todo reference was provided.
	ErrRefRequired = errors.New("todo reference required")

	// ErrRefOutOfRange indicates a reference past the end of the list.
	ErrRefOutOfRange = errors.New("number out of range")

	// ErrInvalidRef indicates a reference that is not a number.
	ErrInvalidRef = errors.New("invalid reference")
)

// ParseRef parses a 1-based position as printed by `gtodo list`.
func ParseRef(arg string) (int, error) {
	if arg == "" {
		return 0, ErrRefRequired
	}
	if !isAllDigits(arg) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRef, arg)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRef, arg)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %d", ErrRefOutOfRange, n)
	}
	return n, nil
}

// ResolveTodo parses the first argument as a list position and returns
// the todo at that position.
func ResolveTodo(ctx context.Context, svc service.Service, args []string) (service.Todo, error) {
	if len(args) == 0 {
		return service.Todo{}, ErrRefRequired
	}
	n, err := ParseRef(args[0])
	if err != nil {
		return service.Todo{}, err
	}

	todos, err := svc.ListTodos(ctx)
	if err != nil {
		return service.Todo{}, err
	}
	if n > len(todos) {
		return service.Todo{}, fmt.Errorf("todo %w: %d", ErrRefOutOfRange, n)
	}
	return todos[n-1], nil
}

// ResolveReminder returns the n-th (1-based) reminder of todoID as printed
// by `gtodo reminders`.
func ResolveReminder(ctx context.Context, svc service.Service, todoID int64, arg string) (service.Reminder, error) {
	n, err := ParseRef(arg)
	if err != nil {
		return service.Reminder{}, err
	}
	reminders, err := svc.ListReminders(ctx, todoID)
	if err != nil {
		return service.Reminder{}, err
	}
	if n > len(reminders) {
		return service.Reminder{}, fmt.Errorf("reminder %w: %d", ErrRefOutOfRange, n)
	}
	return reminders[n-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
