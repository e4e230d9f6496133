package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/reminder"
	"gtodo/internal/service"
)

func init() {
	Register(&RemindCmd{})
}

// RemindCmd adds a reminder to a todo or moves an existing one.
type RemindCmd struct {
	edit string
	day  string
	time string
}

func (c *RemindCmd) Name() string      { return "remind" }
func (c *RemindCmd) Aliases() []string { return nil }
func (c *RemindCmd) Synopsis() string  { return "Set a reminder" }
func (c *RemindCmd) Usage() string {
	return "gtodo remind [--edit <n>] [--day <day>] --time <time> <ref>"
}
func (c *RemindCmd) NeedsStore() bool { return true }
func (c *RemindCmd) NeedsAuth() bool  { return false }

func (c *RemindCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.edit, "edit", "", "")
	fs.StringVar(&c.day, "day", "", "")
	fs.StringVar(&c.time, "time", "", "")
}

func (c *RemindCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	if c.time == "" {
		fmt.Fprintln(errOut, "error: --time required")
		return exitcode.UserError
	}
	if c.day == "" && c.edit == "" {
		fmt.Fprintln(errOut, "error: --day required")
		return exitcode.UserError
	}

	t, err := ResolveTodo(ctx, svc, args)
	if err != nil {
		return report(errOut, err)
	}

	var existing *service.Reminder
	if c.edit != "" {
		r, err := ResolveReminder(ctx, svc, t.ID, c.edit)
		if err != nil {
			return report(errOut, err)
		}
		existing = &r
	}

	st, err := setReminder(ctx, cfg, svc, t.ID, existing, c.day, c.time)
	if err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		r := service.Reminder{ID: st.ReminderID, TodoID: st.TodoID, At: st.Time}
		fmt.Fprintf(out, "ok %s\n", output.ReminderLabel(r, cfg.ClockOrReal().Now()))
	}
	return exitcode.Success
}

// resolveReminderTime parses day and clock tokens against the current time.
func resolveReminderTime(cfg *config.Config, dayToken, timeToken string) (day, at time.Time, err error) {
	now := cfg.ClockOrReal().Now()
	day, err = reminder.ParseDay(now, dayToken)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	at, err = reminder.ParseTime(now, day, timeToken, cfg.ReminderLead())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return day, at, nil
}

// setReminder runs a reminder session for todoID. An empty dayToken keeps
// the pre-filled day of existing.
func setReminder(ctx context.Context, cfg *config.Config, svc service.Service, todoID int64, existing *service.Reminder, dayToken, timeToken string) (reminder.State, error) {
	session := reminder.NewSession(svc,
		reminder.WithClock(cfg.ClockOrReal()),
		reminder.WithLogger(cfg.Log()),
		reminder.WithMinLead(cfg.ReminderLead()),
	)
	session.Initialize(todoID, existing)

	now := session.Now()
	if dayToken != "" {
		day, err := reminder.ParseDay(now, dayToken)
		if err != nil {
			return reminder.State{}, err
		}
		if err := session.OnDaySelected(day); err != nil {
			return reminder.State{}, err
		}
	}

	at, err := reminder.ParseTime(now, session.State().Day, timeToken, session.MinLead())
	if err != nil {
		return reminder.State{}, err
	}
	if err := session.OnTimeSelected(ctx, at); err != nil {
		return reminder.State{}, err
	}
	return session.State(), nil
}
