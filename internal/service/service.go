package service

import "context"

// Service is the storage collaborator consumed by commands and components.
// Commands never import the database driver directly.
//
// Observe* methods replay the current state to fn immediately, call fn again
// after every committed mutation, and stop once the returned cancel func is
// called. fn must not block for long; it runs on the mutating goroutine.
type Service interface {
	// ObserveTodos streams snapshots of all todos in insertion order.
	ObserveTodos(fn func([]Todo)) (cancel func())

	// ObserveTodo streams a single todo, or nil once it no longer exists.
	ObserveTodo(id int64, fn func(*Todo)) (cancel func())

	// ListTodos returns all todos in insertion order.
	ListTodos(ctx context.Context) ([]Todo, error)

	// GetTodo returns a todo by ID or ErrNotFound.
	GetTodo(ctx context.Context, id int64) (Todo, error)

	// UpsertTodo inserts the todo when ID is 0 and updates it otherwise.
	// Returns the assigned ID.
	UpsertTodo(ctx context.Context, todo Todo) (int64, error)

	// DeleteTodo deletes a todo and all of its reminders.
	DeleteTodo(ctx context.Context, id int64) error

	// ObserveReminder streams a single reminder, or nil once it no longer exists.
	ObserveReminder(id int64, fn func(*Reminder)) (cancel func())

	// ObserveRemindersForTodo streams the reminders of one todo ordered by time.
	ObserveRemindersForTodo(todoID int64, fn func([]Reminder)) (cancel func())

	// ListReminders returns the reminders of one todo ordered by time.
	ListReminders(ctx context.Context, todoID int64) ([]Reminder, error)

	// UpsertReminder inserts the reminder when ID is 0 and updates it otherwise.
	// The owning todo must exist. Returns the assigned ID.
	UpsertReminder(ctx context.Context, reminder Reminder) (int64, error)

	// DeleteReminder deletes a single reminder.
	DeleteReminder(ctx context.Context, id int64) error
}

// Exporter mirrors local todos to a remote task backend.
type Exporter interface {
	// Export creates or updates the remote copy of todo.
	Export(ctx context.Context, todo Todo, reminders []Reminder) error
}
