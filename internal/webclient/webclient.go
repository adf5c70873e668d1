package webclient

import "context"

// WebClient sends one HTTP request and returns the fully read response.
// Non-2xx statuses are not errors; only transport failures are.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}
