// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gtodo/internal/observable"
	"gtodo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu        sync.RWMutex
	todos     map[int64]service.Todo
	reminders map[int64]service.Reminder
	nextID    int64
	changes   observable.Signal

	// Calls records mutating calls, e.g. "UpsertTodo 3".
	Calls []string

	// Error injection for testing
	ListTodosErr      error
	GetTodoErr        error
	UpsertTodoErr     error
	DeleteTodoErr     error
	ListRemindersErr  error
	UpsertReminderErr error
	DeleteReminderErr error
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		todos:     make(map[int64]service.Todo),
		reminders: make(map[int64]service.Reminder),
		changes:   observable.NewSignal(),
	}
}

// AddTodo adds a todo and returns its id.
func (f *FakeService) AddTodo(title string, done bool) int64 {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.todos[id] = service.Todo{ID: id, Title: title, IsDone: done}
	f.mu.Unlock()
	f.changes.Notify()
	return id
}

// AddReminder adds a reminder to todoID and returns its id.
func (f *FakeService) AddReminder(todoID int64, r service.Reminder) int64 {
	f.mu.Lock()
	f.nextID++
	r.ID = f.nextID
	r.TodoID = todoID
	f.reminders[r.ID] = r
	f.mu.Unlock()
	f.changes.Notify()
	return r.ID
}

// Todo returns the stored todo with id.
func (f *FakeService) Todo(id int64) (service.Todo, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.todos[id]
	return t, ok
}

// Reminders returns all stored reminders ordered by id.
func (f *FakeService) Reminders() []service.Reminder {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Reminder, 0, len(f.reminders))
	for _, r := range f.reminders {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (f *FakeService) record(format string, args ...any) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

// ObserveTodos implements service.Service.
func (f *FakeService) ObserveTodos(fn func([]service.Todo)) func() {
	return f.changes.Subscribe(func(uint64) {
		todos, err := f.ListTodos(context.Background())
		if err == nil {
			fn(todos)
		}
	})
}

// ObserveTodo implements service.Service.
func (f *FakeService) ObserveTodo(id int64, fn func(*service.Todo)) func() {
	return f.changes.Subscribe(func(uint64) {
		if t, ok := f.Todo(id); ok {
			fn(&t)
			return
		}
		fn(nil)
	})
}

// ListTodos implements service.Service.
func (f *FakeService) ListTodos(ctx context.Context) ([]service.Todo, error) {
	if f.ListTodosErr != nil {
		return nil, f.ListTodosErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Todo, 0, len(f.todos))
	for _, t := range f.todos {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetTodo implements service.Service.
func (f *FakeService) GetTodo(ctx context.Context, id int64) (service.Todo, error) {
	if f.GetTodoErr != nil {
		return service.Todo{}, f.GetTodoErr
	}
	t, ok := f.Todo(id)
	if !ok {
		return service.Todo{}, service.ErrNotFound
	}
	return t, nil
}

// UpsertTodo implements service.Service.
func (f *FakeService) UpsertTodo(ctx context.Context, t service.Todo) (int64, error) {
	if f.UpsertTodoErr != nil {
		return 0, f.UpsertTodoErr
	}
	if t.Title == "" {
		return 0, service.ErrEmptyTitle
	}
	f.mu.Lock()
	if t.ID == 0 {
		f.nextID++
		t.ID = f.nextID
	}
	f.todos[t.ID] = t
	f.record("UpsertTodo %d", t.ID)
	f.mu.Unlock()
	f.changes.Notify()
	return t.ID, nil
}

// DeleteTodo implements service.Service.
func (f *FakeService) DeleteTodo(ctx context.Context, id int64) error {
	if f.DeleteTodoErr != nil {
		return f.DeleteTodoErr
	}
	f.mu.Lock()
	if _, ok := f.todos[id]; !ok {
		f.mu.Unlock()
		return service.ErrNotFound
	}
	delete(f.todos, id)
	for rid, r := range f.reminders {
		if r.TodoID == id {
			delete(f.reminders, rid)
		}
	}
	f.record("DeleteTodo %d", id)
	f.mu.Unlock()
	f.changes.Notify()
	return nil
}

// ObserveReminder implements service.Service.
func (f *FakeService) ObserveReminder(id int64, fn func(*service.Reminder)) func() {
	return f.changes.Subscribe(func(uint64) {
		f.mu.RLock()
		r, ok := f.reminders[id]
		f.mu.RUnlock()
		if ok {
			fn(&r)
			return
		}
		fn(nil)
	})
}

// ObserveRemindersForTodo implements service.Service.
func (f *FakeService) ObserveRemindersForTodo(todoID int64, fn func([]service.Reminder)) func() {
	return f.changes.Subscribe(func(uint64) {
		rs, err := f.ListReminders(context.Background(), todoID)
		if err == nil {
			fn(rs)
		}
	})
}

// ListReminders implements service.Service.
func (f *FakeService) ListReminders(ctx context.Context, todoID int64) ([]service.Reminder, error) {
	if f.ListRemindersErr != nil {
		return nil, f.ListRemindersErr
	}
	var result []service.Reminder
	for _, r := range f.Reminders() {
		if r.TodoID == todoID {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].At.Before(result[j].At) })
	return result, nil
}

// UpsertReminder implements service.Service.
func (f *FakeService) UpsertReminder(ctx context.Context, r service.Reminder) (int64, error) {
	if f.UpsertReminderErr != nil {
		return 0, f.UpsertReminderErr
	}
	f.mu.Lock()
	if _, ok := f.todos[r.TodoID]; !ok {
		f.mu.Unlock()
		return 0, fmt.Errorf("todo %d: %w", r.TodoID, service.ErrNotFound)
	}
	if r.ID == 0 {
		f.nextID++
		r.ID = f.nextID
	}
	f.reminders[r.ID] = r
	f.record("UpsertReminder %d", r.ID)
	f.mu.Unlock()
	f.changes.Notify()
	return r.ID, nil
}

// DeleteReminder implements service.Service.
func (f *FakeService) DeleteReminder(ctx context.Context, id int64) error {
	if f.DeleteReminderErr != nil {
		return f.DeleteReminderErr
	}
	f.mu.Lock()
	if _, ok := f.reminders[id]; !ok {
		f.mu.Unlock()
		return service.ErrNotFound
	}
	delete(f.reminders, id)
	f.record("DeleteReminder %d", id)
	f.mu.Unlock()
	f.changes.Notify()
	return nil
}

// FakeExporter records exported todos.
type FakeExporter struct {
	mu       sync.Mutex
	Exported map[int64]int // todo id -> number of reminders
	Err      error
}

var _ service.Exporter = (*FakeExporter)(nil)

// NewFakeExporter creates an empty FakeExporter.
func NewFakeExporter() *FakeExporter {
	return &FakeExporter{Exported: make(map[int64]int)}
}

// Export implements service.Exporter.
func (f *FakeExporter) Export(ctx context.Context, todo service.Todo, reminders []service.Reminder) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Exported[todo.ID] = len(reminders)
	return nil
}
