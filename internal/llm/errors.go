package llm

import (
	"context"
	"errors"
	"time"
)

// QuotaError indicates the provider rejected a call for quota or rate-limit
// reasons. Callers use this tag to apply fail-open policy for optional work.
type QuotaError struct {
	Provider string
}

func (e *QuotaError) Error() string { return e.Provider + ": quota or rate limit exceeded" }

// AuthError indicates missing or rejected credentials. Never retried.
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string { return e.Provider + ": authentication error: " + e.Message }

// TransportError wraps network-level failures reaching the provider.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string { return e.Provider + ": transport error: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string { return "server error: " + e.body }

// IsQuota reports whether err carries a quota/rate-limit tag anywhere in its chain.
func IsQuota(err error) bool {
	var q *QuotaError
	return errors.As(err, &q)
}

// IsAuth reports whether err carries an authentication tag.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// retryWithBackoff retries fn on quota and 5xx errors with exponential
// backoff. Auth and other errors return immediately. The final error keeps
// its tag so callers can still branch on it.
func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if IsAuth(lastErr) {
			return lastErr
		}

		var srv *serverError
		if !IsQuota(lastErr) && !errors.As(lastErr, &srv) {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
