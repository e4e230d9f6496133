package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
	"gtodo/internal/todo"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd changes the title or description of a todo.
type EditCmd struct {
	title       optionalString
	description optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a todo" }
func (c *EditCmd) Usage() string {
	return "gtodo edit [--title <text>] [--description <text>] <ref>"
}
func (c *EditCmd) NeedsStore() bool { return true }
func (c *EditCmd) NeedsAuth() bool  { return false }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.title, "title", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	if !c.title.set && !c.description.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --description)")
		return exitcode.UserError
	}

	t, err := ResolveTodo(ctx, svc, args)
	if err != nil {
		return report(errOut, err)
	}

	flow := todo.NewFlow(svc, cfg.Log())
	flow.StartEdit(t)
	if c.title.set {
		if err := flow.SetEditTitle(c.title.value); err != nil {
			return report(errOut, err)
		}
	}
	if c.description.set {
		if err := flow.SetEditDescription(c.description.value); err != nil {
			return report(errOut, err)
		}
	}
	if err := flow.FinishEdit(ctx); err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
