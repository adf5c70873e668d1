package webclient

import (
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte

	// WithCredentials sends and stores cookies through the client's jar.
	// When false the request goes out with no cookies and any Set-Cookie in
	// the response is ignored.
	WithCredentials bool
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
