// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/raysh454/buzzclient/internal/logging"
	"github.com/raysh454/buzzclient/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

// LogRecord is a copy of everything a DummyLogger has seen.
type LogRecord struct {
	Errors, Infos, Debugs, Warns []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// Snapshot returns a copy of the recorded messages, safe to read while other
// goroutines keep logging.
func (l *DummyLogger) Snapshot() LogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LogRecord{
		Errors: append([]string(nil), l.Errors...),
		Infos:  append([]string(nil), l.Infos...),
		Debugs: append([]string(nil), l.Debugs...),
		Warns:  append([]string(nil), l.Warns...),
	}
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns StatusCode (200 if zero) with Body.
// Set Err to force a transport failure.
type DummyWebClient struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	Err        error

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.Err != nil {
		return nil, d.Err
	}

	status := d.StatusCode
	if status == 0 {
		status = 200
	}
	resp := &webclient.Response{
		Request:    req,
		Body:       d.Body,
		StatusCode: status,
		FetchedAt:  time.Now(),
		Headers:    make(map[string][]string),
	}
	for k, v := range d.Headers {
		resp.Headers.Set(k, v)
	}
	return resp, nil
}

// LastRequest returns the most recent request, or nil.
func (d *DummyWebClient) LastRequest() *webclient.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Requests) == 0 {
		return nil
	}
	return d.Requests[len(d.Requests)-1]
}

func (d *DummyWebClient) Close() error { return nil }
