// Package main is the entry point for darling.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/darling/cmd/darling/commands"
	"go.trai.ch/darling/internal/app"
	"go.trai.ch/darling/internal/core/domain"
	_ "go.trai.ch/darling/internal/wiring"
)

const (
	exitFailure   = 1
	exitOutOfSync = 2
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// The logger is not available when initialization failed.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitFailure
	}
	defer cleanup()

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrManifestOutOfSync) {
			components.Logger.Warn(err.Error())
			return exitOutOfSync
		}
		components.Logger.Error(err)
		return exitFailure
	}
	return 0
}
