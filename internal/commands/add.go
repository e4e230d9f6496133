package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
	"gtodo/internal/todo"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd creates a todo, optionally with a first reminder.
type AddCmd struct {
	description string
	day         string
	time        string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Add a todo" }
func (c *AddCmd) Usage() string {
	return "gtodo add [--description <text>] [--day <day> --time <time>] <title...>"
}
func (c *AddCmd) NeedsStore() bool { return true }
func (c *AddCmd) NeedsAuth() bool  { return false }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.day, "day", "", "")
	fs.StringVar(&c.time, "time", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	withReminder := c.day != "" || c.time != ""
	if withReminder && (c.day == "" || c.time == "") {
		fmt.Fprintln(errOut, "error: --day and --time must be given together")
		return exitcode.UserError
	}

	flow := todo.NewFlow(svc, cfg.Log())
	flow.StartAdd()
	if err := flow.SetTitle(strings.TrimSpace(strings.Join(args, " "))); err != nil {
		return report(errOut, err)
	}
	if err := flow.SetDescription(c.description); err != nil {
		return report(errOut, err)
	}
	if err := flow.SetAddReminder(withReminder); err != nil {
		return report(errOut, err)
	}

	// Reject a bad reminder before anything is stored
	if withReminder {
		if _, _, err := resolveReminderTime(cfg, c.day, c.time); err != nil {
			return report(errOut, err)
		}
	}

	id, addReminder, err := flow.CompleteAdd(ctx)
	if err != nil {
		return report(errOut, err)
	}

	if addReminder {
		if _, err := setReminder(ctx, cfg, svc, id, nil, c.day, c.time); err != nil {
			return report(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
