package fetch

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	retryAttempts       = 3
	retryInitialBackoff = time.Second
	retryMaxBackoff     = 30 * time.Second
	retryJitterFraction = 0.25
)

// transientError marks a download failure that is safe to retry, such as a
// throttling response from a census mirror.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// transientStatus reports whether an HTTP status indicates a server-side
// condition that tends to clear on its own.
func transientStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// isTransient reports whether err is worth retrying: an explicitly marked
// transient failure, a network timeout, or a dropped connection.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *transientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"i/o timeout",
		"tls handshake timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// withRetry runs fn, retrying transient failures with exponential backoff and
// jitter. Context cancellation and non-transient errors stop retries
// immediately.
func withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || !isTransient(lastErr) {
			return lastErr
		}
		if attempt >= retryAttempts-1 {
			break
		}

		delay := backoff(attempt)
		zap.L().Warn("fetch: retrying download",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

func backoff(attempt int) time.Duration {
	delay := float64(retryInitialBackoff) * math.Pow(2, float64(attempt))
	delay = math.Min(delay, float64(retryMaxBackoff))
	delay += (rand.Float64()*2 - 1) * delay * retryJitterFraction
	return time.Duration(math.Max(delay, 0))
}
