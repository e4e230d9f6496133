package commands

import (
	"errors"
	"fmt"
	"io"

	"gtodo/internal/backend/googletasks"
	"gtodo/internal/exitcode"
	"gtodo/internal/reminder"
	"gtodo/internal/service"
	"gtodo/internal/todo"
)

// userErrors are reported as-is with exit code 1.
var userErrors = []error{
	ErrRefRequired,
	ErrRefOutOfRange,
	ErrInvalidRef,
	service.ErrNotFound,
	service.ErrEmptyTitle,
	reminder.ErrNoDay,
	reminder.ErrPastDay,
	reminder.ErrTooSoon,
	reminder.ErrInvalidAmount,
	reminder.ErrInvalidUnit,
	reminder.ErrInvalidDay,
	reminder.ErrInvalidTime,
}

// report prints err to errOut and returns the matching exit code.
func report(errOut io.Writer, err error) int {
	if errors.Is(err, todo.ErrTitleRequired) {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if errors.Is(err, googletasks.ErrAuth) {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
