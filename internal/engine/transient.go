package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	stealth "github.com/anatolykoptev/go-stealth"
)

// HTTPStatusError reports a non-200 upstream response.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %d %s [%s]", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// IsTransient reports whether err looks like a temporary upstream condition:
// a retryable HTTP status, a connection or DNS failure, or a timeout.
// Callers use it for diagnostics only; nothing is retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		return stealth.IsRetryableStatus(httpErr.StatusCode)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Connection errors (dial failures, connection refused, etc.)
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
