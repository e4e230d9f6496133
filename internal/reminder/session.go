package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"gtodo/internal/observable"
	"gtodo/internal/service"
)

// Phase is the step of an add or edit session.
type Phase int

const (
	AwaitingDay Phase = iota
	AwaitingTime
	Complete
)

func (p Phase) String() string {
	switch p {
	case AwaitingDay:
		return "awaiting-day"
	case AwaitingTime:
		return "awaiting-time"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// State is a snapshot of a session.
type State struct {
	TodoID     int64
	ReminderID int64 // 0 until stored
	Phase      Phase

	DaySelected  bool
	TimeSelected bool

	// Day is local midnight of the held day; zero when none is held.
	Day time.Time

	// Time is the held date-time.
	Time time.Time
}

// HasDay reports whether a day is held, either selected or pre-filled.
func (s State) HasDay() bool {
	return !s.Day.IsZero()
}

// Upserter stores a reminder and returns its id.
type Upserter interface {
	UpsertReminder(ctx context.Context, r service.Reminder) (int64, error)
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used to decide what "today" is.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithMinLead sets the minimum lead time for same-day reminders.
func WithMinLead(d time.Duration) Option {
	return func(s *Session) { s.minLead = d }
}

// WithOnComplete registers a callback run after every successful upsert.
func WithOnComplete(fn func(State)) Option {
	return func(s *Session) { s.onComplete = fn }
}

// Session drives one add or edit of a reminder: a day is selected first,
// then a time, and the combined value is stored with a single upsert.
type Session struct {
	store      Upserter
	clock      clockwork.Clock
	log        *slog.Logger
	minLead    time.Duration
	onComplete func(State)

	mu    sync.Mutex // serialises transitions
	state *observable.Value[State]
}

// NewSession creates a session in create mode for no todo.
// Call Initialize before selecting a day.
func NewSession(store Upserter, opts ...Option) *Session {
	s := &Session{
		store:   store,
		clock:   clockwork.NewRealClock(),
		log:     slog.New(slog.DiscardHandler),
		minLead: DefaultMinLead,
		state:   observable.New(State{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MinLead returns the minimum lead time for same-day reminders.
func (s *Session) MinLead() time.Duration {
	return s.minLead
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.clock.Now()
}

// State returns the current state.
func (s *Session) State() State {
	return s.state.Get()
}

// Subscribe replays the current state to fn and pushes every transition.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	return s.state.Subscribe(fn)
}

// Initialize resets the session. A nil existing starts create mode for
// todoID; otherwise day and time are pre-filled for an in-place edit.
func (s *Session) Initialize(todoID int64, existing *service.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing == nil {
		s.state.Set(State{TodoID: todoID, Phase: AwaitingDay})
		return
	}
	s.state.Set(State{
		TodoID:     existing.TodoID,
		ReminderID: existing.ID,
		Phase:      AwaitingDay,
		Day:        Today(existing.At),
		Time:       existing.At,
	})
}

// OnDaySelected holds day and moves on to time selection.
// Days before today are rejected with ErrPastDay.
func (s *Session) OnDaySelected(day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if !SelectableDate(now, day) {
		return fmt.Errorf("%w: %s", ErrPastDay, day.Format(dateLayout))
	}

	st := s.state.Get()
	st.Day = Today(day)
	st.DaySelected = true
	st.Phase = AwaitingTime
	s.state.Set(st)

	s.log.Debug("reminder day selected", "todo", st.TodoID, "day", st.Day.Format(dateLayout))
	return nil
}

// OnTimeSelected combines the held day with t's clock time and upserts the
// reminder exactly once. When the held day is today and t falls on a later
// date, the held day follows t.
//
// A held day before today, as pre-filled from a stale reminder, is rejected
// with ErrPastDay. A storage error is returned unchanged and the session
// stays incomplete.
func (s *Session) OnTimeSelected(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state.Get()
	if !st.HasDay() {
		return ErrNoDay
	}

	now := s.clock.Now()
	day := st.Day
	if !SelectableDate(now, day) {
		return fmt.Errorf("%w: %s", ErrPastDay, day.Format(dateLayout))
	}
	if SameDay(day, now) && Today(t).After(day) {
		day = Today(t)
	}

	y, m, d := day.Date()
	at := time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location())

	st.Day = day
	st.Time = at
	st.TimeSelected = true
	s.state.Set(st)

	id, err := s.store.UpsertReminder(ctx, service.Reminder{
		ID:     st.ReminderID,
		TodoID: st.TodoID,
		At:     at,
	})
	if err != nil {
		return err
	}

	st.ReminderID = id
	st.Phase = Complete
	s.state.Set(st)

	s.log.Debug("reminder stored", "todo", st.TodoID, "reminder", id, "at", at.Format(time.DateTime))
	if s.onComplete != nil {
		s.onComplete(st)
	}
	return nil
}
