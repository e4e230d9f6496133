package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"gtodo/internal/calendar"
	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd writes all reminders as an iCalendar feed.
type ExportCmd struct {
	outPath string
	open    bool
}

func (c *ExportCmd) Name() string      { return "export-ics" }
func (c *ExportCmd) Aliases() []string { return []string{"ics"} }
func (c *ExportCmd) Synopsis() string  { return "Export reminders as iCalendar" }
func (c *ExportCmd) Usage() string     { return "gtodo export-ics [--open] [--out <file>]" }
func (c *ExportCmd) NeedsStore() bool  { return true }
func (c *ExportCmd) NeedsAuth() bool   { return false }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.outPath, "out", "", "")
	fs.StringVar(&c.outPath, "o", "", "")
	fs.BoolVar(&c.open, "open", false, "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	todos, err := listTodos(ctx, svc, c.open)
	if err != nil {
		return report(errOut, err)
	}
	reminders := make(map[int64][]service.Reminder, len(todos))
	for _, t := range todos {
		rs, err := svc.ListReminders(ctx, t.ID)
		if err != nil {
			return report(errOut, err)
		}
		reminders[t.ID] = rs
	}

	now := cfg.ClockOrReal().Now()
	if c.outPath == "" {
		if err := calendar.Write(out, todos, reminders, now); err != nil {
			return report(errOut, err)
		}
		return exitcode.Success
	}

	f, err := os.Create(c.outPath)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := calendar.Write(f, todos, reminders, now); err != nil {
		f.Close()
		return report(errOut, err)
	}
	if err := f.Close(); err != nil {
		return report(errOut, err)
	}
	cfg.Log().Debug("calendar exported", "path", c.outPath, "todos", len(todos))

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// listTodos returns all todos, or only the open ones.
func listTodos(ctx context.Context, svc service.Service, openOnly bool) ([]service.Todo, error) {
	todos, err := svc.ListTodos(ctx)
	if err != nil || !openOnly {
		return todos, err
	}
	open := todos[:0]
	for _, t := range todos {
		if !t.IsDone {
			open = append(open, t)
		}
	}
	return open, nil
}
