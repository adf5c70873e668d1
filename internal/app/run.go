package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raysh454/buzzclient/internal/account"
	"github.com/raysh454/buzzclient/internal/cli"
	"github.com/raysh454/buzzclient/internal/logging"
)

// Run executes a.Args.Command. serve blocks until ctx is done or the bridge
// fails; the other commands make their API calls, or read session storage,
// and print the result.
func Run(ctx context.Context, a *Application) error {
	switch a.Args.Command {
	case cli.CommandServe, "":
		return a.serve(ctx)
	case cli.CommandHealth:
		h, err := a.Accounts.Health(ctx)
		if err != nil {
			return fmt.Errorf("health check: %w", err)
		}
		fmt.Fprintf(a.Stdout, "%s %s\n", a.API.BaseURL(), h.Status)
		return nil
	case cli.CommandCheckUsername:
		free, err := a.Accounts.CheckUsername(ctx, a.Args.Args[0])
		return a.printAvailability("username", a.Args.Args[0], free, err)
	case cli.CommandCheckEmail:
		free, err := a.Accounts.CheckEmail(ctx, a.Args.Args[0])
		return a.printAvailability("email", a.Args.Args[0], free, err)
	case cli.CommandLogin:
		return a.login(ctx, a.Args.Args[0])
	case cli.CommandWhoami:
		u, err := a.Accounts.CurrentUser(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Stdout, "%s (%s)\n", u.Username, u.ID)
		return nil
	case cli.CommandLogout:
		if err := a.Accounts.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout, "signed out")
		return nil
	default:
		return fmt.Errorf("unknown command %q", a.Args.Command)
	}
}

// login reads the password from the first line of Stdin, signs in, then
// fetches the profile with the new auth cookie.
func (a *Application) login(ctx context.Context, identifier string) error {
	sc := bufio.NewScanner(a.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		return errors.New("read password: no input")
	}
	password := strings.TrimRight(sc.Text(), "\r")

	if _, err := a.Accounts.Login(ctx, account.LoginForm{Identifier: identifier, Password: password}); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	u, err := a.Accounts.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	fmt.Fprintf(a.Stdout, "signed in as %s\n", u.Username)
	return nil
}

func (a *Application) printAvailability(kind, value string, free bool, err error) error {
	if err != nil {
		return fmt.Errorf("check %s: %w", kind, err)
	}
	status := "taken"
	if free {
		status = "available"
	}
	fmt.Fprintf(a.Stdout, "%s %q is %s\n", kind, value, status)
	return nil
}

func (a *Application) serve(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	if _, err := a.Accounts.Health(ctx); err != nil {
		// The bridge is still useful while the API is down.
		a.Logger.Warn("api not reachable at startup", logging.Field{Key: "error", Value: err})
	}

	done := a.Done()
	if done == nil {
		<-ctx.Done()
		return nil
	}
	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		if err != nil {
			return fmt.Errorf("bridge: %w", err)
		}
		return errors.New("bridge stopped unexpectedly")
	}
}
