package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/service"
)

func init() {
	Register(&RemindersCmd{})
	Register(&UnremindCmd{})
}

// RemindersCmd lists the reminders of one todo.
type RemindersCmd struct{}

func (c *RemindersCmd) Name() string      { return "reminders" }
func (c *RemindersCmd) Aliases() []string { return nil }
func (c *RemindersCmd) Synopsis() string  { return "List reminders of a todo" }
func (c *RemindersCmd) Usage() string     { return "gtodo reminders <ref>" }
func (c *RemindersCmd) NeedsStore() bool  { return true }
func (c *RemindersCmd) NeedsAuth() bool   { return false }

func (c *RemindersCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RemindersCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	t, err := ResolveTodo(ctx, svc, args)
	if err != nil {
		return report(errOut, err)
	}
	reminders, err := svc.ListReminders(ctx, t.ID)
	if err != nil {
		return report(errOut, err)
	}

	if len(reminders) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no reminders")
		}
		return exitcode.Success
	}

	now := cfg.ClockOrReal().Now()
	for i, r := range reminders {
		output.FormatReminder(out, i+1, r, now)
	}
	return exitcode.Success
}

// UnremindCmd deletes one reminder of a todo.
type UnremindCmd struct{}

func (c *UnremindCmd) Name() string      { return "unremind" }
func (c *UnremindCmd) Aliases() []string { return nil }
func (c *UnremindCmd) Synopsis() string  { return "Delete a reminder" }
func (c *UnremindCmd) Usage() string     { return "gtodo unremind <ref> <n>" }
func (c *UnremindCmd) NeedsStore() bool  { return true }
func (c *UnremindCmd) NeedsAuth() bool   { return false }

func (c *UnremindCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UnremindCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintf(errOut, "error: usage: %s\n", c.Usage())
		return exitcode.UserError
	}

	t, err := ResolveTodo(ctx, svc, args)
	if err != nil {
		return report(errOut, err)
	}
	r, err := ResolveReminder(ctx, svc, t.ID, args[1])
	if err != nil {
		return report(errOut, err)
	}
	if err := svc.DeleteReminder(ctx, r.ID); err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
