package httpclient

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Logger creates a logging middleware for http.RoundTripper.
// Credentials in headers and the ?key= query param are redacted
func Logger(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			duration := time.Since(start)

			if err != nil {
				logger.Error("HTTP request failed",
					slog.String("method", req.Method),
					slog.String("url", redactedURL(req.URL)),
					slog.Duration("duration", duration),
					slog.Any("error", err))

				return resp, err
			}

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("url", redactedURL(req.URL)),
				slog.Int("status", resp.StatusCode),
				slog.Duration("duration", duration),
			}

			if len(req.Header) > 0 {
				headerAttrs := make([]slog.Attr, 0, len(req.Header))
				for k, v := range req.Header {
					if isSensitiveHeader(k) {
						headerAttrs = append(headerAttrs, slog.String(k, "[REDACTED]"))
					} else {
						headerAttrs = append(headerAttrs, slog.String(k, strings.Join(v, ", ")))
					}
				}

				attrs = append(attrs, slog.Any("headers", slog.GroupValue(headerAttrs...)))
			}

			// Errors from the remote end deserve a louder level
			level := slog.LevelDebug
			if resp.StatusCode >= 400 {
				level = slog.LevelWarn
			}

			if resp.StatusCode >= 500 {
				level = slog.LevelError
			}

			logger.LogAttrs(req.Context(), level, "📥 HTTP call", attrs...)

			return resp, nil
		})
	}
}

// New returns an http.Client for external API calls with request logging
func New(logger *slog.Logger, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: Wrap(DefaultTransport(), Logger(logger)),
	}
}
