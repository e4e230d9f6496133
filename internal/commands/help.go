package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "gtodo help" }
func (c *HelpCmd) NeedsStore() bool  { return false }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  gtodo                                          List all todos
  gtodo list [common flags] [--open] [--watch]
  gtodo add [common flags] [--description <text>] [--day <day> --time <time>] <title...>
  gtodo edit [common flags] [--title <text>] [--description <text>] <ref>
  gtodo done [common flags] [--undo] <ref>
  gtodo rm [common flags] [--window <duration>] <ref>...
  gtodo remind [common flags] [--edit <n>] [--day <day>] --time <time> <ref>
  gtodo reminders [common flags] <ref>
  gtodo unremind [common flags] <ref> <n>
  gtodo export-ics [common flags] [--open] [--out <file>]
  gtodo sync [common flags] [--open] [--jobs <n>]
  gtodo login [common flags]
  gtodo logout [common flags]
  gtodo help
  gtodo version

Refs are the numbers printed by list. Reminder numbers are those printed
by reminders.

Days:  today, tomorrow, YYYY-MM-DD, +N[d|w|m|y]
Times: HH:MM, a preset hour (9, 12, 15, 18, 21), +N[m|h] (today only)

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
