package commands

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"sync"
	"time"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/service"
)

// watchInterval is how often --watch polls for changes made elsewhere.
const watchInterval = 2 * time.Second

func init() {
	Register(&ListCmd{})
}

// ListCmd prints todos with their reminders.
// Handles both `gtodo` (no args) and `gtodo list`.
type ListCmd struct {
	open  bool
	watch bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List todos" }
func (c *ListCmd) Usage() string     { return "gtodo list [--open] [--watch]" }
func (c *ListCmd) NeedsStore() bool  { return true }
func (c *ListCmd) NeedsAuth() bool   { return false }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "")
	fs.BoolVar(&c.watch, "watch", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if c.watch {
		return c.runWatch(ctx, cfg, svc, out, errOut)
	}

	todos, err := svc.ListTodos(ctx)
	if err != nil {
		return report(errOut, err)
	}
	if err := c.render(ctx, cfg, svc, todos, out); err != nil {
		return report(errOut, err)
	}
	return exitcode.Success
}

// runWatch redraws the list whenever its rendering changes, until ctx is
// cancelled. Changes made by this process arrive through the store's
// observer; changes made by other processes are picked up by polling.
func (c *ListCmd) runWatch(ctx context.Context, cfg *config.Config, svc service.Service, out, errOut io.Writer) int {
	clock := cfg.ClockOrReal()

	var (
		mu   sync.Mutex
		last string
	)
	redraw := func(todos []service.Todo) {
		var buf bytes.Buffer
		if err := c.render(ctx, cfg, svc, todos, &buf); err != nil {
			cfg.Log().Warn("render failed", "err", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if buf.String() == last {
			return
		}
		last = buf.String()
		output.FormatHeader(out, clock.Now().Format("2006-01-02 15:04:05"))
		out.Write(buf.Bytes())
	}

	cancel := svc.ObserveTodos(redraw)
	defer cancel()

	ticker := clock.NewTicker(watchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return exitcode.Success
		case <-ticker.Chan():
			todos, err := svc.ListTodos(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return exitcode.Success
				}
				return report(errOut, err)
			}
			redraw(todos)
		}
	}
}

func (c *ListCmd) render(ctx context.Context, cfg *config.Config, svc service.Service, todos []service.Todo, out io.Writer) error {
	now := cfg.ClockOrReal().Now()
	shown := 0
	for i, t := range todos {
		if c.open && t.IsDone {
			continue
		}
		reminders, err := svc.ListReminders(ctx, t.ID)
		if err != nil {
			return err
		}
		// Numbers stay list positions so refs work with --open too
		output.FormatTodoDetail(out, i+1, t, reminders, now)
		shown++
	}
	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no todos")
	}
	return nil
}
