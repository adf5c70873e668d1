package webclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/buzzclient/internal/testutil"
	"github.com/raysh454/buzzclient/internal/webclient"
)

func newClient(t *testing.T, cfg webclient.Config, httpClient *http.Client) *webclient.NetHTTPClient {
	t.Helper()
	client, err := webclient.NewNetHTTPClient(cfg, &testutil.DummyLogger{}, httpClient)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// ─── Construction ──────────────────────────────────────────────────────

func TestNewNetHTTPClient_DefaultClient(t *testing.T) {
	t.Parallel()
	client := newClient(t, webclient.Config{Timeout: 5 * time.Second}, nil)
	if client.Jar() == nil {
		t.Fatal("expected a cookie jar to be installed")
	}
}

// ─── Do: real HTTP round-trip via httptest ──────────────────────────────

func TestNetHTTPClient_Do_GET_ReturnsBody(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "hello")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "response body")
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Do(context.Background(), &webclient.Request{
		Method: "GET",
		URL:    ts.URL + "/test",
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "response body" {
		t.Errorf("expected 'response body', got %q", resp.Body)
	}
	if resp.Headers.Get("X-Custom") != "hello" {
		t.Errorf("expected X-Custom header 'hello', got %q", resp.Headers.Get("X-Custom"))
	}
}

func TestNetHTTPClient_Do_POST_SendsBody(t *testing.T) {
	t.Parallel()
	var receivedBody string
	var receivedMethod string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Do(context.Background(), &webclient.Request{
		Method: "post",
		URL:    ts.URL + "/submit",
		Body:   []byte("payload"),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if receivedMethod != "POST" {
		t.Errorf("expected POST, got %s", receivedMethod)
	}
	if receivedBody != "payload" {
		t.Errorf("expected body 'payload', got %q", receivedBody)
	}
	if resp.StatusCode != 201 {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
}

func TestNetHTTPClient_Do_ForwardsHeaders(t *testing.T) {
	t.Parallel()
	var receivedAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	hdrs := http.Header{}
	hdrs.Set("Authorization", "Bearer test-token")
	_, err := client.Do(context.Background(), &webclient.Request{
		Method:  "GET",
		URL:     ts.URL,
		Headers: hdrs,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if receivedAuth != "Bearer test-token" {
		t.Errorf("expected Authorization header forwarded, got %q", receivedAuth)
	}
}

func TestNetHTTPClient_Do_PropagatesStatusCode(t *testing.T) {
	t.Parallel()
	codes := []int{200, 401, 404, 422, 500}
	for _, code := range codes {
		code := code
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(code)
			}))
			defer ts.Close()

			client := newClient(t, webclient.Config{}, ts.Client())

			resp, err := client.Do(context.Background(), &webclient.Request{
				Method: "GET",
				URL:    ts.URL,
			})
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			if resp.StatusCode != code {
				t.Errorf("expected %d, got %d", code, resp.StatusCode)
			}
		})
	}
}

func TestNetHTTPClient_Do_NilRequest_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newClient(t, webclient.Config{}, nil)

	if _, err := client.Do(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestNetHTTPClient_Do_ConnectionRefused_ReturnsError(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}
	client, err := webclient.NewNetHTTPClient(webclient.Config{}, logger, &http.Client{Timeout: 1 * time.Second})
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	defer client.Close()

	_, err = client.Do(context.Background(), &webclient.Request{
		Method: "GET",
		URL:    "http://127.0.0.1:1", // port 1 is unlikely to be open
	})
	if err == nil {
		t.Fatal("expected error for connection refused")
	}
	if len(logger.Snapshot().Warns) == 0 {
		t.Error("expected failure to be logged as a warning")
	}
}

func TestNetHTTPClient_Do_ContextCanceled_ReturnsError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(200)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := client.Do(ctx, &webclient.Request{
		Method: "GET",
		URL:    ts.URL,
	})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

// ─── Credentials ───────────────────────────────────────────────────────

func TestNetHTTPClient_Do_CookiesOnlyWithCredentials(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "tok", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("auth_token")
		if err != nil {
			_, _ = io.WriteString(w, "anonymous")
			return
		}
		_, _ = io.WriteString(w, c.Value)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())
	ctx := context.Background()

	if _, err := client.Do(ctx, &webclient.Request{Method: "POST", URL: ts.URL + "/login", WithCredentials: true}); err != nil {
		t.Fatalf("login: %v", err)
	}

	withCreds, err := client.Do(ctx, &webclient.Request{Method: "GET", URL: ts.URL + "/whoami", WithCredentials: true})
	if err != nil {
		t.Fatalf("whoami with credentials: %v", err)
	}
	if string(withCreds.Body) != "tok" {
		t.Errorf("expected cookie sent with credentials, got %q", withCreds.Body)
	}

	omitted, err := client.Do(ctx, &webclient.Request{Method: "GET", URL: ts.URL + "/whoami"})
	if err != nil {
		t.Fatalf("whoami without credentials: %v", err)
	}
	if string(omitted.Body) != "anonymous" {
		t.Errorf("expected no cookie without credentials, got %q", omitted.Body)
	}
}

func TestNetHTTPClient_Do_OmitCredentialsIgnoresSetCookie(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "tok", Path: "/"})
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())
	if _, err := client.Do(context.Background(), &webclient.Request{Method: "GET", URL: ts.URL}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	if cookies := client.Jar().Cookies(req.URL); len(cookies) != 0 {
		t.Fatalf("expected jar untouched, got %v", cookies)
	}
}

func TestNetHTTPClient_Do_SecureCookieReturnedToLoopback(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    "tok",
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("auth_token"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())
	ctx := context.Background()

	if _, err := client.Do(ctx, &webclient.Request{Method: "POST", URL: ts.URL + "/login", WithCredentials: true}); err != nil {
		t.Fatalf("login: %v", err)
	}
	resp, err := client.Do(ctx, &webclient.Request{Method: "GET", URL: ts.URL + "/me", WithCredentials: true})
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected Secure cookie sent to %s, got status %d", ts.URL, resp.StatusCode)
	}
}

func TestNetHTTPClient_Jar_SecureCookieWithheldFromRemoteHTTP(t *testing.T) {
	t.Parallel()
	client := newClient(t, webclient.Config{}, nil)

	remote, _ := url.Parse("https://api.example.com/")
	client.Jar().SetCookies(remote, []*http.Cookie{{Name: "auth_token", Value: "tok", Path: "/", Secure: true}})

	plain, _ := url.Parse("http://api.example.com/v1/users/me")
	if got := client.Jar().Cookies(plain); len(got) != 0 {
		t.Errorf("expected no Secure cookie over http to a remote host, got %v", got)
	}
	if got := client.Jar().Cookies(remote); len(got) != 1 {
		t.Errorf("expected cookie over https, got %v", got)
	}
}

// ─── Rate limit ────────────────────────────────────────────────────────

func TestNetHTTPClient_Do_RateLimitHonorsContext(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{RateLimit: 0.001, Burst: 1}, ts.Client())

	if _, err := client.Do(context.Background(), &webclient.Request{URL: ts.URL}); err != nil {
		t.Fatalf("first request should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Do(ctx, &webclient.Request{URL: ts.URL})
	if err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

// ─── Large response body ──────────────────────────────────────────────

func TestNetHTTPClient_Do_LargeBody(t *testing.T) {
	t.Parallel()
	largeBody := strings.Repeat("X", 1<<20) // 1 MiB
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, largeBody)
	}))
	defer ts.Close()

	client := newClient(t, webclient.Config{}, ts.Client())

	resp, err := client.Do(context.Background(), &webclient.Request{Method: "GET", URL: ts.URL})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(resp.Body) != 1<<20 {
		t.Errorf("expected 1MiB body, got %d bytes", len(resp.Body))
	}
}
