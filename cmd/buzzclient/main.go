// Command buzzclient runs the BuzzChat client core: it serves the local
// bridge a UI subscribes to, or runs a one-shot API command.
//
// Usage:
//
//	buzzclient [-config file.hcl] [-listen addr] [-session file.db] [-verbose] [serve|health|check-username NAME|check-email EMAIL|login USER|whoami|logout]
//
// login reads the password from the first line of stdin.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raysh454/buzzclient/internal/app"
	"github.com/raysh454/buzzclient/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "buzzclient:", err)
		os.Exit(1)
	}
}

func run() error {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		return err
	}
	cfg, err := app.ResolveConfig(args)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := app.Run(ctx, a)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
