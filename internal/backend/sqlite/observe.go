package sqlite

import (
	"context"
	"errors"

	"gtodo/internal/service"
)

// Observers are re-run after every committed change. Callbacks run on the
// goroutine that made the change and must not modify the store.

// ObserveTodos delivers the todo list now and after every change.
func (s *Store) ObserveTodos(fn func([]service.Todo)) (cancel func()) {
	return s.watch(func(ctx context.Context) error {
		todos, err := s.ListTodos(ctx)
		if err != nil {
			return err
		}
		fn(todos)
		return nil
	})
}

// ObserveTodo delivers the todo with id, or nil once it no longer exists.
func (s *Store) ObserveTodo(id int64, fn func(*service.Todo)) (cancel func()) {
	return s.watch(func(ctx context.Context) error {
		t, err := s.GetTodo(ctx, id)
		if errors.Is(err, service.ErrNotFound) {
			fn(nil)
			return nil
		}
		if err != nil {
			return err
		}
		fn(&t)
		return nil
	})
}

// ObserveReminder delivers the reminder with id, or nil once it no longer exists.
func (s *Store) ObserveReminder(id int64, fn func(*service.Reminder)) (cancel func()) {
	return s.watch(func(ctx context.Context) error {
		r, err := s.GetReminder(ctx, id)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			return err
		}
		fn(r)
		return nil
	})
}

// ObserveRemindersForTodo delivers the todo's reminders now and after every change.
func (s *Store) ObserveRemindersForTodo(todoID int64, fn func([]service.Reminder)) (cancel func()) {
	return s.watch(func(ctx context.Context) error {
		reminders, err := s.ListReminders(ctx, todoID)
		if err != nil {
			return err
		}
		fn(reminders)
		return nil
	})
}

func (s *Store) watch(refresh func(ctx context.Context) error) (cancel func()) {
	return s.changes.Subscribe(func(rev uint64) {
		ctx, cancel := context.WithTimeout(context.Background(), QueryTimeout)
		defer cancel()
		if err := refresh(ctx); err != nil {
			s.log.Error("observer refresh failed", "revision", rev, "err", err)
		}
	})
}
