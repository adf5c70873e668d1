package cli

import (
	"flag"
	"fmt"
	"strings"
)

// Commands understood by buzzclient.
const (
	CommandServe         = "serve"
	CommandHealth        = "health"
	CommandCheckUsername = "check-username"
	CommandCheckEmail    = "check-email"
	CommandLogin         = "login"
	CommandWhoami        = "whoami"
	CommandLogout        = "logout"
)

// argCounts is the number of positional arguments each command takes.
var argCounts = map[string]int{
	CommandServe:         0,
	CommandHealth:        0,
	CommandCheckUsername: 1,
	CommandCheckEmail:    1,
	CommandLogin:         1,
	CommandWhoami:        0,
	CommandLogout:        0,
}

// CLIArgs are the parsed command line.
type CLIArgs struct {
	// ConfigPath is an optional HCL config file.
	ConfigPath string

	// ListenAddr overrides bridge.listen_addr when set.
	ListenAddr string

	// SessionPath overrides session.path when set.
	SessionPath string

	// Verbose forces debug logging.
	Verbose bool

	// Command defaults to serve.
	Command string
	Args    []string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. The function is
// deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("buzzclient", flag.ContinueOnError)
	var (
		configPath  = fs.String("config", "", "Path to an HCL config file")
		listenAddr  = fs.String("listen", "", "Bridge listen address (overrides config)")
		sessionPath = fs.String("session", "", "SQLite session file (overrides config; empty keeps sessions in memory)")
		verbose     = fs.Bool("verbose", false, "Log at debug level")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(nil)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	command := CommandServe
	if len(rest) > 0 {
		command = strings.ToLower(rest[0])
		rest = rest[1:]
	}

	want, ok := argCounts[command]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", command)
	}
	if len(rest) != want {
		return nil, fmt.Errorf("%s takes %d argument(s), got %d", command, want, len(rest))
	}

	return &CLIArgs{
		ConfigPath:  strings.TrimSpace(*configPath),
		ListenAddr:  strings.TrimSpace(*listenAddr),
		SessionPath: strings.TrimSpace(*sessionPath),
		Verbose:     *verbose,
		Command:     command,
		Args:        rest,
		RawArgs:     args,
	}, nil
}
