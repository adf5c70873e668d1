package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/raysh454/buzzclient/internal/account"
	"github.com/raysh454/buzzclient/internal/apiclient"
	"github.com/raysh454/buzzclient/internal/bridge"
	"github.com/raysh454/buzzclient/internal/cli"
	"github.com/raysh454/buzzclient/internal/config"
	"github.com/raysh454/buzzclient/internal/logging"
	"github.com/raysh454/buzzclient/internal/navigation"
	"github.com/raysh454/buzzclient/internal/notify"
	"github.com/raysh454/buzzclient/internal/session"
	"github.com/raysh454/buzzclient/internal/webclient"
)

// Application is the global runtime state container.
// It holds config, parsed CLI args and the services shared across modules.
// Pass Application into modules that need access to the global state rather
// than using package-level variables.
type Application struct {
	Config *config.Config
	Args   *cli.CLIArgs
	Logger logging.Logger

	Notifications *notify.Store
	Navigation    *navigation.Router
	Session       session.Storage
	Web           *webclient.NetHTTPClient
	API           *apiclient.Client
	Accounts      *account.Service
	Bridge        *bridge.Server

	// Stdout receives command output; Stdin supplies the login password.
	Stdout io.Writer
	Stdin  io.Reader

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	serveErr chan error

	// internal context for cancellation / lifecycle
	ctx    context.Context
	cancel context.CancelFunc
}

type options struct {
	logOut     io.Writer
	stdout     io.Writer
	stdin      io.Reader
	httpClient *http.Client
}

// Option customizes New.
type Option func(*options)

// WithLogOutput sends log lines to w. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOut = w }
}

// WithStdout sends command output to w. Defaults to stdout.
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithStdin reads command input from r. Defaults to stdin.
func WithStdin(r io.Reader) Option {
	return func(o *options) { o.stdin = r }
}

// WithHTTPClient replaces the outbound *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New builds every service from cfg. cfg must already be validated; args may
// be nil. Call Shutdown to release the session store and connections.
func New(cfg *config.Config, args *cli.CLIArgs, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if args == nil {
		args = &cli.CLIArgs{Command: cli.CommandServe}
	}
	o := options{logOut: os.Stderr, stdout: os.Stdout, stdin: os.Stdin}
	for _, opt := range opts {
		opt(&o)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	if args.Verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewLogger(o.logOut, "buzzclient", level)

	var store session.Storage
	if cfg.Session.Path != "" {
		sqlStore, err := session.OpenSQLite(cfg.Session.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		store = sqlStore
	} else {
		store = session.NewMemory()
	}

	web, err := webclient.NewNetHTTPClient(webclient.Config{
		Timeout:   cfg.Client.Timeout,
		RateLimit: cfg.Client.RateLimit,
		Burst:     cfg.Client.Burst,
	}, logger, o.httpClient)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating webclient: %w", err)
	}

	notes := notify.NewStore()
	nav := navigation.NewRouter()

	api, err := apiclient.New(cfg.API, apiclient.Deps{
		Web:       web,
		Session:   store,
		Navigator: nav,
		Notifier:  notes,
		Logger:    logger,
	}, apiclient.WithTransportNotifications(cfg.Client.NotifyTransportErrors))
	if err != nil {
		web.Close()
		store.Close()
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	br, err := bridge.NewServer(bridge.Config{ListenAddr: cfg.Bridge.ListenAddr, Logger: logger}, notes, nav)
	if err != nil {
		web.Close()
		store.Close()
		return nil, fmt.Errorf("creating bridge: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		Config:        cfg,
		Args:          args,
		Logger:        logger,
		Notifications: notes,
		Navigation:    nav,
		Session:       store,
		Web:           web,
		API:           api,
		Accounts:      account.NewService(api, store, nav, notes, logger),
		Bridge:        br,
		Stdout:        o.stdout,
		Stdin:         o.stdin,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start begins serving the bridge in the background. It is a no-op when no
// listen address is configured.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		return errors.New("application already started")
	}
	if a.Config.Bridge.ListenAddr == "" {
		a.Logger.Info("bridge disabled")
		return nil
	}

	ln, err := net.Listen("tcp", a.Config.Bridge.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.Config.Bridge.ListenAddr, err)
	}
	a.listener = ln
	a.server = a.Bridge.HTTPServer()
	a.server.BaseContext = func(net.Listener) context.Context { return a.ctx }
	a.serveErr = make(chan error, 1)

	go func() {
		err := a.server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		a.serveErr <- err
	}()

	a.Logger.Info("application started",
		logging.Field{Key: "bridge_addr", Value: ln.Addr().String()},
		logging.Field{Key: "api", Value: a.API.BaseURL()})
	return nil
}

// Addr returns the bridge's bound address, or "" before Start.
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Done receives the bridge's serve error once it stops. It is nil when Start
// did not start a bridge.
func (a *Application) Done() <-chan error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.serveErr
}

// Shutdown stops the bridge, then closes the transport and session store.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var errs []error
	a.mu.Lock()
	server := a.server
	a.mu.Unlock()
	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("bridge shutdown: %w", err))
		}
	}

	// cancel internal ctx so hijacked websocket connections unwind
	a.cancel()

	if err := a.Web.Close(); err != nil {
		errs = append(errs, fmt.Errorf("webclient close: %w", err))
	}
	if err := a.Session.Close(); err != nil {
		errs = append(errs, fmt.Errorf("session close: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		a.Logger.Warn("shutdown finished with errors", logging.Field{Key: "error", Value: err})
	}
	return err
}
