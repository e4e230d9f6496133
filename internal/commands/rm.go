package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sync"
	"time"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/removal"
	"gtodo/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd deletes todos after an undo window. Interrupting the command
// (Ctrl+C) during the window undoes the deletion.
type RmCmd struct {
	window time.Duration
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete todos (undoable)" }
func (c *RmCmd) Usage() string     { return "gtodo rm [--window <duration>] <ref>..." }
func (c *RmCmd) NeedsStore() bool  { return true }
func (c *RmCmd) NeedsAuth() bool   { return false }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.DurationVar(&c.window, "window", 0, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return report(errOut, ErrRefRequired)
	}
	if c.window < 0 {
		fmt.Fprintf(errOut, "error: invalid window: %s\n", c.window)
		return exitcode.UserError
	}

	// Resolve every ref before anything is deleted so positions stay stable
	var targets []service.Todo
	seen := make(map[int64]bool)
	for _, arg := range args {
		t, err := ResolveTodo(ctx, svc, []string{arg})
		if err != nil {
			return report(errOut, err)
		}
		if !seen[t.ID] {
			seen[t.ID] = true
			targets = append(targets, t)
		}
	}

	var (
		mu      sync.Mutex
		failure error
	)
	del := func(ctx context.Context, id int64) error {
		err := svc.DeleteTodo(ctx, id)
		if err != nil {
			mu.Lock()
			failure = errors.Join(failure, err)
			mu.Unlock()
		}
		return err
	}

	rc := cfg.Removal()
	if c.window > 0 {
		rc.Window = c.window
	}
	tracker := removal.New(del, rc,
		removal.WithClock(cfg.ClockOrReal()),
		removal.WithLogger(cfg.Log()),
	)

	if !cfg.Quiet {
		label := targets[0].Title
		if len(targets) > 1 {
			label = fmt.Sprintf("%d todos", len(targets))
		}
		cancel := tracker.Subscribe(func(progress map[int64]int) {
			if len(progress) > 0 {
				output.FormatProgress(errOut, label, lowest(progress))
			}
		})
		defer cancel()
	}

	for _, t := range targets {
		tracker.RequestDelete(t.ID)
	}

	done := make(chan struct{})
	go func() {
		tracker.Wait()
		close(done)
	}()

	undone := 0
	select {
	case <-done:
	case <-ctx.Done():
		for _, t := range targets {
			if tracker.Undo(t.ID) {
				undone++
			}
		}
		<-done
	}
	if !cfg.Quiet {
		fmt.Fprintln(errOut)
	}

	if undone < len(targets) && failure != nil {
		return report(errOut, failure)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, rmSummary(undone, len(targets)))
	}
	return exitcode.Success
}

// rmSummary describes how many of total deletions were undone.
func rmSummary(undone, total int) string {
	switch {
	case undone == 0:
		return "ok"
	case undone == total:
		return "undone"
	default:
		return fmt.Sprintf("undone %d of %d", undone, total)
	}
}

// lowest returns the smallest progress value, so the bar only reaches 100%
// once every deletion is about to run.
func lowest(progress map[int64]int) int {
	result := 100
	for _, p := range progress {
		result = min(result, p)
	}
	return result
}
