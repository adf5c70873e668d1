package app

import (
	"fmt"

	"github.com/raysh454/buzzclient/internal/cli"
	"github.com/raysh454/buzzclient/internal/config"
)

// ResolveConfig loads the config named by args (defaults, file, environment)
// and applies the command-line overrides on top.
func ResolveConfig(args *cli.CLIArgs) (*config.Config, error) {
	path := ""
	if args != nil {
		path = args.ConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if args == nil {
		return cfg, nil
	}

	if args.ListenAddr != "" {
		cfg.Bridge.ListenAddr = args.ListenAddr
	}
	if args.SessionPath != "" {
		cfg.Session.Path = args.SessionPath
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("after command-line overrides: %w", err)
	}
	return cfg, nil
}
