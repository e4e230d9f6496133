// Package main is the entry point for the gtodo CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gtodo/internal/backend/sqlite"
	"gtodo/internal/cli"
	"gtodo/internal/commands"
	"gtodo/internal/config"
	"gtodo/internal/service"
)

func main() {
	// Ctrl+C cancels the context; rm treats that as undo
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		store, err := sqlite.Open(cfg.DBPath(), sqlite.Options{
			Logger: cfg.Logger,
			Debug:  cfg.Debug,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
