package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrProviderUnavailable is returned once a transient failure outlives the retry budget.
var ErrProviderUnavailable = errors.New("provider unavailable")

// StatusError is a non-2xx answer from a model or embedding backend.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// IsRetryableStatus reports whether an HTTP status is worth another attempt.
func IsRetryableStatus(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

// IsRetryable classifies an error as transient (rate limit, timeout, 5xx, network).
// Cancellation by the caller is never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var sc httpStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableStatus(sc.HTTPStatusCode())
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
