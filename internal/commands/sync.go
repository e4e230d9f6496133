package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"gtodo/internal/backend/googletasks"
	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

// DefaultSyncJobs is the number of todos exported concurrently.
const DefaultSyncJobs = 4

// NewExporter creates the remote exporter used by sync. Tests replace it.
var NewExporter = func(ctx context.Context, cfg *config.Config) (service.Exporter, error) {
	client, err := googletasks.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func init() {
	Register(&SyncCmd{})
}

// SyncCmd mirrors local todos into the default Google Tasks list.
type SyncCmd struct {
	open bool
	jobs int
}

func (c *SyncCmd) Name() string      { return "sync" }
func (c *SyncCmd) Aliases() []string { return nil }
func (c *SyncCmd) Synopsis() string  { return "Mirror todos to Google Tasks" }
func (c *SyncCmd) Usage() string     { return "gtodo sync [--open] [--jobs <n>]" }
func (c *SyncCmd) NeedsStore() bool  { return true }
func (c *SyncCmd) NeedsAuth() bool   { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "")
	fs.IntVar(&c.jobs, "jobs", DefaultSyncJobs, "")
}

func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.jobs < 1 {
		fmt.Fprintf(errOut, "error: invalid jobs: %d\n", c.jobs)
		return exitcode.UserError
	}

	exporter, err := NewExporter(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	todos, err := listTodos(ctx, svc, c.open)
	if err != nil {
		return report(errOut, err)
	}

	var synced atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)
	for _, t := range todos {
		g.Go(func() error {
			reminders, err := svc.ListReminders(gctx, t.ID)
			if err != nil {
				return err
			}
			if err := exporter.Export(gctx, t, reminders); err != nil {
				return fmt.Errorf("todo %d: %w", t.ID, err)
			}
			synced.Add(1)
			cfg.Log().Debug("todo exported", "id", t.ID, "reminders", len(reminders))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "synced %d todos\n", synced.Load())
	}
	return exitcode.Success
}
