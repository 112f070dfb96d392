package httpclient

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RoundTripperFunc is a function that implements http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware is a function that wraps an http.RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// Wrap wraps a base http.RoundTripper with a chain of middlewares.
// Middlewares are applied in order, so the first middleware is the outermost.
func Wrap(base http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	for i := len(middlewares) - 1; i >= 0; i-- {
		base = middlewares[i](base)
	}

	return base
}

// DefaultTransport returns a configured http.Transport suitable for external API calls.
func DefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// redactedURL strips credential-bearing query params before logging.
// Identity Toolkit carries the API key as ?key=
func redactedURL(u *url.URL) string {
	q := u.Query()
	if q.Get("key") != "" {
		q.Set("key", "[REDACTED]")

		clone := *u
		clone.RawQuery = q.Encode()

		return clone.String()
	}

	return u.String()
}

// isSensitiveHeader checks if header contains sensitive information
func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "cookie", "set-cookie", "x-api-key", "x-auth-token":
		return true
	}

	return false
}
