package httpclient

import (
	"net/http"
	"time"

	"pronto-sync/internal/core/logger"

	"go.uber.org/zap"
)

// LoggingRoundTripper captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := logger.FromContext(req.Context()).With(
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
	)

	log.Debug("HTTP Request Started")

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		log.Error("HTTP Request Failed", zap.Duration("duration", duration), zap.Error(err))
		return nil, err
	}

	log.Debug("HTTP Request Completed",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// BasicAuthRoundTripper sets HTTP Basic credentials on every request.
type BasicAuthRoundTripper struct {
	Username string
	Password string
	Proxied  http.RoundTripper
}

// RoundTrip clones the request and adds the Authorization header.
func (b *BasicAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(b.Username, b.Password)
	return b.Proxied.RoundTrip(clone)
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
		},
		Timeout: timeout,
	}
}

// NewBasicAuthClient returns a logging http.Client that authenticates with HTTP Basic.
func NewBasicAuthClient(timeout time.Duration, username, password string) *http.Client {
	return &http.Client{
		Transport: &BasicAuthRoundTripper{
			Username: username,
			Password: password,
			Proxied: &LoggingRoundTripper{
				Proxied: http.DefaultTransport,
			},
		},
		Timeout: timeout,
	}
}
