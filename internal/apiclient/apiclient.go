// Package apiclient is the single entry point for talking to the BuzzChat
// API. Call builds the request, sends it, parses the JSON body and branches on
// the status code, applying the global side effects the UI relies on:
//
//   - 2xx: the success callback receives the decoded body.
//   - 401: session storage is cleared, navigation is sent to "/" and the
//     error notification shows the body's "error" field.
//   - 422: the error notification shows the "error" field.
//   - any other status: the caller's error callback if it gave one, the error
//     notification otherwise.
//   - transport or parse failure: logged and returned as a transport-error
//     Result; no callback runs.
//
// Every request carries an X-Request-ID header, generated unless the caller
// supplies one. It is the only header added to multipart requests.
package apiclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/buzzclient/internal/config"
	"github.com/raysh454/buzzclient/internal/logging"
	"github.com/raysh454/buzzclient/internal/webclient"
)

// Session is the persisted local storage wiped on 401.
type Session interface {
	Clear(ctx context.Context) error
}

// Navigator receives redirect targets.
type Navigator interface {
	Goto(path string)
}

// Notifier is the error display surface.
type Notifier interface {
	TriggerError(message any)
}

// Deps are the collaborators a Client drives. All but Logger are required.
type Deps struct {
	Web       webclient.WebClient
	Session   Session
	Navigator Navigator
	Notifier  Notifier
	Logger    logging.Logger
}

// Client sends requests to one API base URL.
type Client struct {
	baseURL         string
	web             webclient.WebClient
	session         Session
	nav             Navigator
	notifier        Notifier
	logger          logging.Logger
	notifyTransport bool
}

// Option customises a Client.
type Option func(*Client)

// WithTransportNotifications makes transport and parse failures raise the
// error notification in addition to being logged and returned.
func WithTransportNotifications(enabled bool) Option {
	return func(c *Client) { c.notifyTransport = enabled }
}

// New returns a Client for the API described by api.
func New(api config.API, deps Deps, opts ...Option) (*Client, error) {
	switch {
	case deps.Web == nil:
		return nil, errors.New("apiclient: web client is required")
	case deps.Session == nil:
		return nil, errors.New("apiclient: session storage is required")
	case deps.Navigator == nil:
		return nil, errors.New("apiclient: navigator is required")
	case deps.Notifier == nil:
		return nil, errors.New("apiclient: notifier is required")
	}
	if api.Protocol == "" || api.Host == "" || api.Port == 0 {
		return nil, fmt.Errorf("apiclient: incomplete api config %+v", api)
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	c := &Client{
		baseURL:  api.BaseURL(),
		web:      deps.Web,
		session:  deps.Session,
		nav:      deps.Navigator,
		notifier: deps.Notifier,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.With(
		logging.Field{Key: "component", Value: "apiclient"},
		logging.Field{Key: "base_url", Value: c.baseURL},
	)
	return c, nil
}

// BaseURL returns {protocol}://{host}:{port}.
func (c *Client) BaseURL() string {
	return c.baseURL
}
