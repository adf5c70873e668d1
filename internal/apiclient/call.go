package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/raysh454/buzzclient/internal/logging"
	"github.com/raysh454/buzzclient/internal/navigation"
	"github.com/raysh454/buzzclient/internal/webclient"
)

// Method is one of the HTTP methods the API accepts.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// Credentials mirrors the fetch credentials modes.
type Credentials string

const (
	// CredentialsDefault sends no cookies.
	CredentialsDefault Credentials = ""
	CredentialsOmit    Credentials = "omit"
	// CredentialsSameOrigin and CredentialsInclude both send and store
	// cookies; the client only ever talks to its own API origin.
	CredentialsSameOrigin Credentials = "same-origin"
	CredentialsInclude    Credentials = "include"
)

func (c Credentials) sendsCookies() bool {
	return c == CredentialsSameOrigin || c == CredentialsInclude
}

// HeaderRequestID is set on every request that does not already carry it.
const HeaderRequestID = "X-Request-ID"

// Options describes one request.
type Options[T any] struct {
	// Endpoint is appended verbatim to the base URL, e.g. "/v1/users/me".
	Endpoint string
	// Method defaults to GET.
	Method Method
	// Data is JSON-encoded unless Multipart is set. nil sends no body.
	Data        any
	Headers     map[string]string
	Credentials Credentials
	// Multipart sends Data ([]byte, string or io.Reader) unmodified with
	// Headers used verbatim: no default Content-Type is added, so the caller
	// supplies the boundary. The one header Call still adds is X-Request-ID,
	// and only when Headers does not already carry it.
	Multipart bool

	// OnSuccess receives the 2xx body decoded into T.
	OnSuccess func(T)
	// OnError receives the body of non-2xx responses other than 401 and 422.
	// When nil those responses raise the error notification instead.
	OnError func(Payload)
}

// Call sends the request described by opts through c and applies the status
// branching documented on the package. It never panics on bad input: problems
// building the request are reported as a transport-error Result.
func Call[T any](ctx context.Context, c *Client, opts Options[T]) Result {
	method := opts.Method
	if method == "" {
		method = MethodGet
	}
	reqID := ""
	if opts.Headers != nil {
		reqID = opts.Headers[HeaderRequestID]
	}
	if reqID == "" {
		reqID = uuid.NewString()
	}

	logger := c.logger.With(
		logging.Field{Key: "method", Value: string(method)},
		logging.Field{Key: "endpoint", Value: opts.Endpoint},
		logging.Field{Key: "request_id", Value: reqID},
	)

	req, err := buildRequest(c.baseURL, method, reqID, opts)
	if err != nil {
		return c.transportFailure(logger, reqID, err)
	}

	resp, err := c.web.Do(ctx, req)
	if err != nil {
		return c.transportFailure(logger, reqID, err)
	}

	payload, err := parsePayload(resp.Body)
	if err != nil {
		return c.transportFailure(logger, reqID, &DecodeError{
			StatusCode: resp.StatusCode,
			Summary:    summarizeBody(resp.Headers.Get("Content-Type"), resp.Body),
			Err:        err,
		})
	}

	res := Result{
		Outcome:    OutcomeHTTPError,
		StatusCode: resp.StatusCode,
		Payload:    payload,
		RequestID:  reqID,
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if opts.OnSuccess != nil {
			var v T
			if err := payload.Decode(&v); err != nil {
				return c.transportFailure(logger, reqID, &DecodeError{StatusCode: resp.StatusCode, Err: err})
			}
			opts.OnSuccess(v)
		}
		res.Outcome = OutcomeSuccess
		logger.Debug("api call succeeded", logging.Field{Key: "status", Value: resp.StatusCode})

	case resp.StatusCode == http.StatusUnauthorized:
		logger.Info("api call unauthorized, clearing session")
		if err := c.session.Clear(ctx); err != nil {
			logger.Error("failed to clear session", logging.Field{Key: "error", Value: err})
		}
		c.nav.Goto(navigation.Root)
		c.notifier.TriggerError(payload.ErrorField())

	case resp.StatusCode == http.StatusUnprocessableEntity:
		logger.Debug("api call rejected input", logging.Field{Key: "status", Value: resp.StatusCode})
		c.notifier.TriggerError(payload.ErrorField())

	default:
		logger.Debug("api call failed", logging.Field{Key: "status", Value: resp.StatusCode})
		if opts.OnError != nil {
			opts.OnError(payload)
		} else {
			c.notifier.TriggerError(payload.ErrorField())
		}
	}
	return res
}

func buildRequest[T any](baseURL string, method Method, reqID string, opts Options[T]) (*webclient.Request, error) {
	switch method {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}

	headers := http.Header{}
	if !opts.Multipart {
		headers.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}
	if headers.Get(HeaderRequestID) == "" {
		headers.Set(HeaderRequestID, reqID)
	}

	body, err := encodeBody(opts.Data, opts.Multipart)
	if err != nil {
		return nil, err
	}

	return &webclient.Request{
		Method:          string(method),
		URL:             baseURL + opts.Endpoint,
		Headers:         headers,
		Body:            body,
		WithCredentials: opts.Credentials.sendsCookies(),
	}, nil
}

func encodeBody(data any, multipart bool) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	if !multipart {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return b, nil
	}
	switch d := data.(type) {
	case []byte:
		return d, nil
	case string:
		return []byte(d), nil
	case *bytes.Buffer:
		return d.Bytes(), nil
	case io.Reader:
		b, err := io.ReadAll(d)
		if err != nil {
			return nil, fmt.Errorf("read multipart body: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w, got %T", ErrMultipartBody, data)
	}
}

// transportFailure logs err and returns it as a transport-error Result. No
// callback runs; the error notification is raised only when the client was
// built WithTransportNotifications.
func (c *Client) transportFailure(logger logging.Logger, reqID string, err error) Result {
	logger.Error("api call failed before a usable response", logging.Field{Key: "error", Value: err})
	if c.notifyTransport {
		c.notifier.TriggerError(transportMessage(err))
	}
	return Result{Outcome: OutcomeTransportError, RequestID: reqID, cause: err}
}

func transportMessage(err error) string {
	var de *DecodeError
	if errors.As(err, &de) {
		if de.Summary != "" {
			return de.Summary
		}
		return "Unexpected response from the server."
	}
	if errors.Is(err, context.Canceled) {
		return "Request was cancelled."
	}
	return "Unable to reach the server."
}
