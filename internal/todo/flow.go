// Package todo implements the add and edit flows for todos.
package todo

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"gtodo/internal/service"
)

var (
	// ErrTitleRequired is returned when completing a flow with an empty title.
	ErrTitleRequired = errors.New("title is required")

	// ErrNotAdding is returned when no addition is in progress.
	ErrNotAdding = errors.New("no todo is being added")

	// ErrNotEditing is returned when no edit is in progress.
	ErrNotEditing = errors.New("no todo is being edited")
)

// Store persists todos.
type Store interface {
	UpsertTodo(ctx context.Context, t service.Todo) (int64, error)
}

// Addition is the input of a todo that is being added.
type Addition struct {
	Title       string
	Description string
	AddReminder bool

	// TitleError is set when completion was attempted with an empty title
	// and cleared by the next title change.
	TitleError bool
}

// Edit is the input of an existing todo that is being edited.
type Edit struct {
	Original    service.Todo
	Title       string
	Description string
	TitleError  bool
}

// Flow holds at most one addition and one edit in progress.
type Flow struct {
	store Store
	log   *slog.Logger

	mu       sync.Mutex
	addition *Addition
	edit     *Edit
}

// NewFlow creates a Flow. A nil log discards output.
func NewFlow(store Store, log *slog.Logger) *Flow {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Flow{store: store, log: log}
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// StartAdd begins a new, empty addition, replacing any in progress.
func (f *Flow) StartAdd() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addition = &Addition{}
}

// CancelAdd discards the addition in progress.
func (f *Flow) CancelAdd() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addition = nil
}

// Addition returns the addition in progress.
func (f *Flow) Addition() (Addition, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addition == nil {
		return Addition{}, false
	}
	return *f.addition, true
}

// SetTitle sets the addition's title, truncated to service.TitleMaxChars,
// and clears the title error.
func (f *Flow) SetTitle(title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addition == nil {
		return ErrNotAdding
	}
	f.addition.Title = Truncate(title, service.TitleMaxChars)
	f.addition.TitleError = false
	return nil
}

// SetDescription sets the addition's description, truncated to
// service.DescriptionMaxChars.
func (f *Flow) SetDescription(description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addition == nil {
		return ErrNotAdding
	}
	f.addition.Description = Truncate(description, service.DescriptionMaxChars)
	return nil
}

// SetAddReminder records whether a reminder should follow the addition.
func (f *Flow) SetAddReminder(add bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addition == nil {
		return ErrNotAdding
	}
	f.addition.AddReminder = add
	return nil
}

// CompleteAdd stores the addition as a new, open todo and clears it.
// With an empty title the title error is set, nothing is stored and
// ErrTitleRequired is returned.
func (f *Flow) CompleteAdd(ctx context.Context) (id int64, addReminder bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a := f.addition
	if a == nil {
		return 0, false, ErrNotAdding
	}
	if a.Title == "" {
		a.TitleError = true
		return 0, false, ErrTitleRequired
	}

	id, err = f.store.UpsertTodo(ctx, service.Todo{
		Title:       a.Title,
		Description: a.Description,
	})
	if err != nil {
		return 0, false, err
	}

	f.log.Debug("todo added", "id", id, "reminder", a.AddReminder)
	f.addition = nil
	return id, a.AddReminder, nil
}

// StartEdit begins editing t with its current title and description.
func (f *Flow) StartEdit(t service.Todo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edit = &Edit{
		Original:    t,
		Title:       t.Title,
		Description: t.Description,
	}
}

// CancelEdit discards the edit in progress.
func (f *Flow) CancelEdit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edit = nil
}

// Edit returns the edit in progress.
func (f *Flow) Edit() (Edit, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edit == nil {
		return Edit{}, false
	}
	return *f.edit, true
}

// SetEditTitle sets the edited title, truncated to service.TitleMaxChars.
func (f *Flow) SetEditTitle(title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edit == nil {
		return ErrNotEditing
	}
	f.edit.Title = Truncate(title, service.TitleMaxChars)
	f.edit.TitleError = false
	return nil
}

// SetEditDescription sets the edited description, truncated to
// service.DescriptionMaxChars.
func (f *Flow) SetEditDescription(description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edit == nil {
		return ErrNotEditing
	}
	f.edit.Description = Truncate(description, service.DescriptionMaxChars)
	return nil
}

// FinishEdit stores the edited title and description in place and clears
// the edit. The completion flag is left as it was.
func (f *Flow) FinishEdit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e := f.edit
	if e == nil {
		return ErrNotEditing
	}
	if e.Title == "" {
		e.TitleError = true
		return ErrTitleRequired
	}

	updated := e.Original
	updated.Title = e.Title
	updated.Description = e.Description
	if _, err := f.store.UpsertTodo(ctx, updated); err != nil {
		return err
	}

	f.log.Debug("todo edited", "id", updated.ID)
	f.edit = nil
	return nil
}

// SetDone stores t with its completion flag set to done.
func (f *Flow) SetDone(ctx context.Context, t service.Todo, done bool) error {
	t.IsDone = done
	if _, err := f.store.UpsertTodo(ctx, t); err != nil {
		return err
	}
	f.log.Debug("todo completion changed", "id", t.ID, "done", done)
	return nil
}
