package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// EnvPrefix is prepended to every environment variable the config reads,
// e.g. BUZZ_API_HOST or BUZZ_CLIENT_TIMEOUT.
const EnvPrefix = "BUZZ_"

// hclFile mirrors Config with optional blocks and attributes so a file only
// needs to mention what it overrides.
type hclFile struct {
	API     *hclAPI     `hcl:"api,block"`
	Client  *hclClient  `hcl:"client,block"`
	Session *hclSession `hcl:"session,block"`
	Bridge  *hclBridge  `hcl:"bridge,block"`
	Log     *hclLog     `hcl:"log,block"`
}

type hclAPI struct {
	Protocol *string `hcl:"protocol,optional"`
	Host     *string `hcl:"host,optional"`
	Port     *int    `hcl:"port,optional"`
}

type hclClient struct {
	Timeout               *string  `hcl:"timeout,optional"`
	RateLimit             *float64 `hcl:"rate_limit,optional"`
	Burst                 *int     `hcl:"burst,optional"`
	NotifyTransportErrors *bool    `hcl:"notify_transport_errors,optional"`
}

type hclSession struct {
	Path *string `hcl:"path,optional"`
}

type hclBridge struct {
	ListenAddr *string `hcl:"listen_addr,optional"`
}

type hclLog struct {
	Level *string `hcl:"level,optional"`
}

// Load builds a Config from defaults, then the HCL file at path (skipped
// when path is empty), then BUZZ_* environment variables, and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		parser := hclparse.NewParser()
		f, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}
		if err := applyHCL(cfg, f); err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyHCL overlays the HCL document in src onto cfg. filename is only used
// in diagnostics.
func ApplyHCL(cfg *Config, src []byte, filename string) error {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("parse %s: %w", filename, diags)
	}
	return applyHCL(cfg, f)
}

func applyHCL(cfg *Config, f *hcl.File) error {
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return diags
	}

	if a := parsed.API; a != nil {
		setIf(&cfg.API.Protocol, a.Protocol)
		setIf(&cfg.API.Host, a.Host)
		setIf(&cfg.API.Port, a.Port)
	}
	if c := parsed.Client; c != nil {
		if c.Timeout != nil {
			d, err := time.ParseDuration(*c.Timeout)
			if err != nil {
				return fmt.Errorf("client timeout: %w", err)
			}
			cfg.Client.Timeout = d
		}
		setIf(&cfg.Client.RateLimit, c.RateLimit)
		setIf(&cfg.Client.Burst, c.Burst)
		setIf(&cfg.Client.NotifyTransportErrors, c.NotifyTransportErrors)
	}
	if s := parsed.Session; s != nil {
		setIf(&cfg.Session.Path, s.Path)
	}
	if b := parsed.Bridge; b != nil {
		setIf(&cfg.Bridge.ListenAddr, b.ListenAddr)
	}
	if l := parsed.Log; l != nil {
		setIf(&cfg.Log.Level, l.Level)
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ApplyEnv overlays BUZZ_* environment variables onto cfg. Unset variables
// leave the current value alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
