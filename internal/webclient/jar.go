package webclient

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// loopbackJar treats loopback hosts as secure, the way browsers treat
// localhost as a secure context. Without it a Secure auth cookie set by an
// API on http://localhost is stored but never sent back.
type loopbackJar struct {
	http.CookieJar
}

func (j loopbackJar) Cookies(u *url.URL) []*http.Cookie {
	if u != nil && u.Scheme == "http" && isLoopback(u.Hostname()) {
		secure := *u
		secure.Scheme = "https"
		u = &secure
	}
	return j.CookieJar.Cookies(u)
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
