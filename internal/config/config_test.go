package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/buzzclient/internal/config"
)

func TestDefault_BaseURL(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	if got := cfg.API.BaseURL(); got != "http://localhost:4000" {
		t.Fatalf("expected http://localhost:4000, got %q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"protocol", func(c *config.Config) { c.API.Protocol = "ftp" }},
		{"empty host", func(c *config.Config) { c.API.Host = "  " }},
		{"bad host", func(c *config.Config) { c.API.Host = "bad_host" }},
		{"port zero", func(c *config.Config) { c.API.Port = 0 }},
		{"port high", func(c *config.Config) { c.API.Port = 70000 }},
		{"negative timeout", func(c *config.Config) { c.Client.Timeout = -time.Second }},
		{"negative rate", func(c *config.Config) { c.Client.RateLimit = -1 }},
		{"zero burst", func(c *config.Config) { c.Client.RateLimit = 5; c.Client.Burst = 0 }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidate_NormalizesAPI(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.API.Protocol = "HTTPS"
	cfg.API.Host = "Bücher.example"
	cfg.API.Port = 443
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := cfg.API.BaseURL(); got != "https://xn--bcher-kva.example:443" {
		t.Fatalf("unexpected base url %q", got)
	}
}

func TestApplyHCL_OverridesOnlyMentionedFields(t *testing.T) {
	t.Parallel()
	src := []byte(`
api {
  host = "api.buzz.test"
  port = 8443
}

client {
  timeout    = "5s"
  rate_limit = 2.5
  burst      = 3
}

session {
  path = "/tmp/session.db"
}
`)
	cfg := config.Default()
	if err := config.ApplyHCL(cfg, src, "test.hcl"); err != nil {
		t.Fatalf("ApplyHCL: %v", err)
	}
	if cfg.API.Protocol != "http" {
		t.Errorf("protocol should keep default, got %q", cfg.API.Protocol)
	}
	if cfg.API.Host != "api.buzz.test" || cfg.API.Port != 8443 {
		t.Errorf("unexpected api section %+v", cfg.API)
	}
	if cfg.Client.Timeout != 5*time.Second || cfg.Client.RateLimit != 2.5 || cfg.Client.Burst != 3 {
		t.Errorf("unexpected client section %+v", cfg.Client)
	}
	if cfg.Session.Path != "/tmp/session.db" {
		t.Errorf("unexpected session path %q", cfg.Session.Path)
	}
	if cfg.Bridge.ListenAddr != config.Default().Bridge.ListenAddr {
		t.Errorf("bridge should keep default, got %q", cfg.Bridge.ListenAddr)
	}
}

func TestApplyHCL_BadDuration(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	err := config.ApplyHCL(cfg, []byte(`client { timeout = "soon" }`), "bad.hcl")
	if err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestApplyHCL_UnknownBlock(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	if err := config.ApplyHCL(cfg, []byte(`database { url = "x" }`), "bad.hcl"); err == nil {
		t.Fatal("expected error for unknown block")
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("BUZZ_API_HOST", "env.buzz.test")
	t.Setenv("BUZZ_API_PORT", "9000")
	t.Setenv("BUZZ_CLIENT_TIMEOUT", "750ms")
	t.Setenv("BUZZ_CLIENT_NOTIFY_TRANSPORT_ERRORS", "true")

	cfg := config.Default()
	if err := config.ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.API.Host != "env.buzz.test" || cfg.API.Port != 9000 {
		t.Errorf("unexpected api section %+v", cfg.API)
	}
	if cfg.API.Protocol != "http" {
		t.Errorf("unset env var should keep default, got %q", cfg.API.Protocol)
	}
	if cfg.Client.Timeout != 750*time.Millisecond {
		t.Errorf("unexpected timeout %v", cfg.Client.Timeout)
	}
	if !cfg.Client.NotifyTransportErrors {
		t.Error("expected NotifyTransportErrors true")
	}
}

func TestApplyEnv_Error(t *testing.T) {
	t.Setenv("BUZZ_API_PORT", "not-an-int")

	err := config.ApplyEnv(config.Default())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buzz.hcl")
	if err := os.WriteFile(path, []byte(`api { host = "file.buzz.test" }`+"\n"+`log { level = "debug" }`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BUZZ_API_PORT", "4443")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.API.BaseURL(); got != "http://file.buzz.test:4443" {
		t.Fatalf("unexpected base url %q", got)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Log.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.hcl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
