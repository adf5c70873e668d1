package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrDecode marks a response whose body could not be parsed.
	ErrDecode = errors.New("decode response")

	// ErrInvalidMethod is returned for methods outside GET/POST/PUT/PATCH/DELETE.
	ErrInvalidMethod = errors.New("unsupported http method")

	// ErrMultipartBody is returned when a multipart request's Data is not
	// []byte, string or io.Reader.
	ErrMultipartBody = errors.New("multipart data must be []byte, string or io.Reader")
)

// Outcome classifies how a call ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeHTTPError
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeHTTPError:
		return "http-error"
	case OutcomeTransportError:
		return "transport-error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is what Call returns, whatever callbacks it ran.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Payload    Payload
	RequestID  string

	cause error
}

// OK reports a 2xx response whose body parsed.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Err returns nil on success, an *HTTPError for non-2xx responses, and the
// underlying failure for transport errors.
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeHTTPError:
		return &HTTPError{StatusCode: r.StatusCode, Message: r.Payload.ErrorField(), Payload: r.Payload}
	default:
		return r.cause
	}
}

// HTTPError describes a non-2xx response.
type HTTPError struct {
	StatusCode int
	// Message is the body's "error" field: a string, or an object such as a
	// field-to-message map for validation failures.
	Message any
	Payload Payload
}

func (e *HTTPError) Error() string {
	if e.Message == nil {
		// No "error" field: fall back to the body itself.
		if raw := bytes.TrimSpace(e.Payload.Raw()); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			return fmt.Sprintf("api: status %d: %s", e.StatusCode, truncate(string(raw)))
		}
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %v", e.StatusCode, e.Message)
}

// DecodeError is a response that arrived but could not be parsed as JSON.
type DecodeError struct {
	StatusCode int
	// Summary is a short human-readable rendering of the body, e.g. the
	// title of an HTML error page.
	Summary string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Summary != "" {
		return fmt.Sprintf("decode response (status %d, body %q): %v", e.StatusCode, e.Summary, e.Err)
	}
	return fmt.Sprintf("decode response (status %d): %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// Payload is a parsed JSON response body.
type Payload struct {
	raw   json.RawMessage
	value any
}

func parsePayload(body []byte) (Payload, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return Payload{}, err
	}
	return Payload{raw: append(json.RawMessage(nil), body...), value: v}, nil
}

// Raw returns the body bytes.
func (p Payload) Raw() json.RawMessage {
	return p.raw
}

// Decode unmarshals the body into v.
func (p Payload) Decode(v any) error {
	if len(p.raw) == 0 {
		return fmt.Errorf("%w: empty payload", ErrDecode)
	}
	return json.Unmarshal(p.raw, v)
}

// ErrorField returns the body's top-level "error" value, or nil when the body
// is not an object or has no such key.
func (p Payload) ErrorField() any {
	obj, ok := p.value.(map[string]any)
	if !ok {
		return nil
	}
	return obj["error"]
}
