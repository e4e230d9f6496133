// Package removal defers deletions for a grace window during which they can be undone.
package removal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"gtodo/internal/observable"
)

const (
	// DefaultWindow is the default undo grace window.
	DefaultWindow = 3 * time.Second

	// DefaultSteps is the default number of progress updates per window.
	DefaultSteps = 100

	// DefaultDeleteTimeout bounds the final delete call.
	DefaultDeleteTimeout = 5 * time.Second
)

// DeleteFunc commits a deletion once the grace window has elapsed.
type DeleteFunc func(ctx context.Context, id int64) error

// Config holds the countdown settings.
type Config struct {
	// Window is the total time before the deletion is committed.
	Window time.Duration

	// Steps is the number of equal progress increments within Window.
	Steps int
}

// DefaultConfig returns a 3s window reported in 100 steps.
func DefaultConfig() Config {
	return Config{Window: DefaultWindow, Steps: DefaultSteps}
}

// Interval returns the delay between two progress updates. Unset fields
// fall back to the defaults.
func (c Config) Interval() time.Duration {
	c = c.normalized()
	return c.Window / time.Duration(c.Steps)
}

func (c Config) normalized() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Steps <= 0 {
		c.Steps = DefaultSteps
	}
	return c
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the clock used for the countdown timers.
func WithClock(clock clockwork.Clock) Option {
	return func(t *Tracker) { t.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// WithDeleteTimeout bounds each committed delete call.
func WithDeleteTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.deleteTimeout = d }
}

// pending is the handle of one in-flight countdown.
// cancelled and committed are guarded by Tracker.mu.
type pending struct {
	stop      chan struct{}
	cancelled bool
	committed bool
}

// Tracker manages pending deletions keyed by item ID.
//
// Every progress step and the decision to commit a deletion are taken under
// the tracker lock together with the cancellation check, so once Undo returns
// true the deletion for that ID never runs.
type Tracker struct {
	del           DeleteFunc
	cfg           Config
	clock         clockwork.Clock
	log           *slog.Logger
	deleteTimeout time.Duration

	mu       sync.Mutex
	pending  map[int64]*pending
	progress map[int64]int

	updates *observable.Value[map[int64]int]
	wg      sync.WaitGroup
}

// New creates a Tracker that calls del for every deletion that is not undone.
func New(del DeleteFunc, cfg Config, opts ...Option) *Tracker {
	t := &Tracker{
		del:           del,
		cfg:           cfg.normalized(),
		clock:         clockwork.NewRealClock(),
		log:           slog.New(slog.DiscardHandler),
		deleteTimeout: DefaultDeleteTimeout,
		pending:       make(map[int64]*pending),
		progress:      make(map[int64]int),
		updates:       observable.New(map[int64]int{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the effective countdown settings.
func (t *Tracker) Config() Config {
	return t.cfg
}

// RequestDelete starts the countdown for id at progress 0.
// A request for an id that is already pending is ignored.
func (t *Tracker) RequestDelete(id int64) {
	t.mu.Lock()
	if _, ok := t.pending[id]; ok {
		t.mu.Unlock()
		t.log.Debug("removal already pending", "id", id)
		return
	}
	p := &pending{stop: make(chan struct{})}
	t.pending[id] = p
	t.progress[id] = 0
	t.wg.Add(1)
	t.mu.Unlock()

	t.log.Debug("removal requested", "id", id, "window", t.cfg.Window, "steps", t.cfg.Steps)
	t.publish()

	go t.countdown(id, p)
}

// Undo cancels the pending deletion of id.
// Returns false if nothing was pending or the deletion was already committed.
func (t *Tracker) Undo(id int64) bool {
	t.mu.Lock()
	p, ok := t.pending[id]
	if !ok || p.committed {
		t.mu.Unlock()
		return false
	}
	p.cancelled = true
	close(p.stop)
	delete(t.pending, id)
	delete(t.progress, id)
	t.mu.Unlock()

	t.log.Debug("removal undone", "id", id)
	t.publish()
	return true
}

// IsPending reports whether id is currently counting down.
func (t *Tracker) IsPending(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.progress[id]
	return ok
}

// Progress returns a snapshot of id -> progress (0-100) for pending deletions.
func (t *Tracker) Progress() map[int64]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make(map[int64]int, len(t.progress))
	for id, p := range t.progress {
		snapshot[id] = p
	}
	return snapshot
}

// Subscribe replays the current progress snapshot to fn and pushes every change.
// fn must not call RequestDelete, Undo or Close.
func (t *Tracker) Subscribe(fn func(map[int64]int)) (cancel func()) {
	return t.updates.Subscribe(fn)
}

// Wait blocks until every countdown goroutine has exited.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Close undoes every pending deletion and waits for the countdowns to exit.
func (t *Tracker) Close() {
	for id := range t.Progress() {
		t.Undo(id)
	}
	t.Wait()
}

func (t *Tracker) countdown(id int64, p *pending) {
	defer t.wg.Done()

	interval := t.cfg.Interval()
	for step := 1; step <= t.cfg.Steps; step++ {
		timer := t.clock.NewTimer(interval)
		select {
		case <-timer.Chan():
		case <-p.stop:
			timer.Stop()
			return
		}
		if !t.advance(id, p, step) {
			return
		}
	}

	if !t.commit(p) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.deleteTimeout)
	err := t.del(ctx, id)
	cancel()
	if err != nil {
		t.log.Error("removal failed", "id", id, "err", err)
	} else {
		t.log.Debug("removal committed", "id", id)
	}

	t.finish(id, p)
}

// advance records step for id unless the countdown was cancelled.
func (t *Tracker) advance(id int64, p *pending, step int) bool {
	t.mu.Lock()
	if p.cancelled {
		t.mu.Unlock()
		return false
	}
	t.progress[id] = step * 100 / t.cfg.Steps
	t.mu.Unlock()

	t.publish()
	return true
}

// commit marks p as no longer undoable unless it was cancelled first.
func (t *Tracker) commit(p *pending) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p.cancelled {
		return false
	}
	p.committed = true
	return true
}

func (t *Tracker) finish(id int64, p *pending) {
	t.mu.Lock()
	if t.pending[id] == p {
		delete(t.pending, id)
		delete(t.progress, id)
	}
	t.mu.Unlock()

	t.publish()
}

// publish pushes the latest snapshot. Snapshots are taken under the
// observable's delivery lock so subscribers never see them out of order.
func (t *Tracker) publish() {
	t.updates.Update(func(map[int64]int) map[int64]int {
		return t.Progress()
	})
}
