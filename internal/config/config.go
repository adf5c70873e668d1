// Package config holds the runtime configuration for buzzclient and the
// logic to load it from defaults, an optional HCL file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/idna"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("invalid config")

// Config is the root configuration value. Pass it (or one of its sections)
// into constructors instead of reading package-level state.
type Config struct {
	API     API     `envPrefix:"API_"`
	Client  Client  `envPrefix:"CLIENT_"`
	Session Session `envPrefix:"SESSION_"`
	Bridge  Bridge  `envPrefix:"BRIDGE_"`
	Log     Log     `envPrefix:"LOG_"`
}

// API locates the BuzzChat HTTP API.
type API struct {
	Protocol string `env:"PROTOCOL"`
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"`
}

// BaseURL renders {protocol}://{host}:{port}.
func (a API) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", a.Protocol, a.Host, a.Port)
}

// Client tunes the outbound transport.
type Client struct {
	// Timeout bounds a whole request including reading the body. 0 disables it.
	Timeout time.Duration `env:"TIMEOUT"`

	// RateLimit is the sustained requests per second; 0 means unlimited.
	RateLimit float64 `env:"RATE_LIMIT"`
	Burst     int     `env:"BURST"`

	// NotifyTransportErrors raises the error notification when a request
	// fails before a usable response is parsed. Off by default: such failures
	// are only logged and returned to the caller.
	NotifyTransportErrors bool `env:"NOTIFY_TRANSPORT_ERRORS"`
}

// Session selects the persisted session storage. An empty Path keeps the
// session in memory.
type Session struct {
	Path string `env:"PATH"`
}

// Bridge configures the local HTTP/websocket surface a UI subscribes to.
// An empty ListenAddr disables it.
type Bridge struct {
	ListenAddr string `env:"LISTEN_ADDR"`
}

// Log configures the process logger.
type Log struct {
	Level string `env:"LEVEL"`
}

// Default returns a Config populated with development defaults.
func Default() *Config {
	return &Config{
		API: API{
			Protocol: "http",
			Host:     "localhost",
			Port:     4000,
		},
		Client: Client{
			Timeout:   30 * time.Second,
			RateLimit: 0,
			Burst:     1,
		},
		Session: Session{
			Path: "",
		},
		Bridge: Bridge{
			ListenAddr: "127.0.0.1:4100",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Validate checks the config and normalizes the API section in place:
// protocol is lower-cased and host converted to its ASCII form.
func (c *Config) Validate() error {
	proto := strings.ToLower(strings.TrimSpace(c.API.Protocol))
	if proto != "http" && proto != "https" {
		return fmt.Errorf("%w: api protocol must be http or https, got %q", ErrInvalid, c.API.Protocol)
	}
	c.API.Protocol = proto

	host := strings.TrimSpace(c.API.Host)
	if host == "" {
		return fmt.Errorf("%w: api host is required", ErrInvalid)
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return fmt.Errorf("%w: api host %q: %v", ErrInvalid, host, err)
	}
	c.API.Host = ascii

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("%w: api port %d out of range", ErrInvalid, c.API.Port)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("%w: client timeout must not be negative", ErrInvalid)
	}
	if c.Client.RateLimit < 0 {
		return fmt.Errorf("%w: client rate_limit must not be negative", ErrInvalid)
	}
	if c.Client.RateLimit > 0 && c.Client.Burst < 1 {
		return fmt.Errorf("%w: client burst must be at least 1 when rate_limit is set", ErrInvalid)
	}
	return nil
}
