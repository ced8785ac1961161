package dataapi

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"
)

// Cancellation is the logical OR of three independent sources: the caller's
// context, the per-request timeout, and the bulk-operation timeout. Each
// configured budget derives a child context carrying its own cause, so
// whichever source fires first is the one the classifier reports.

type connectTimeoutKey struct{}

// requestContext applies the per-request budget. The returned cancel must be
// called when the exchange ends.
func requestContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeoutCause(ctx, d, errRequestTimeout)
}

// bulkContext applies the whole-bulk-operation budget spanning every chunk
// and page of one logical call.
func bulkContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeoutCause(ctx, d, errBulkTimeout)
}

// withConnectTimeout stashes the connection-establishment budget for the
// dialer. The budget only governs the dial phase; an established connection
// is unaffected.
func withConnectTimeout(ctx context.Context, d time.Duration) context.Context {
	if d <= 0 {
		return ctx
	}
	return context.WithValue(ctx, connectTimeoutKey{}, d)
}

func connectTimeoutFrom(ctx context.Context) time.Duration {
	d, _ := ctx.Value(connectTimeoutKey{}).(time.Duration)
	return d
}

// contextError resolves an expired context to its tagged cancellation
// source. It returns nil while the context is live.
func contextError(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	var te *TimeoutError
	if cause := context.Cause(ctx); errors.As(cause, &te) {
		return te
	}
	return ctx.Err()
}

// classifyTransportError decorates an error returned by the HTTP round trip.
// Dial-phase timeouts become connect-timeout errors; context expiry is
// attributed to whichever budget's cause fired; caller cancellation is
// passed through undecorated so callers can compare against
// context.Canceled.
func classifyTransportError(ctx context.Context, host string, err error) error {
	if err == nil {
		return nil
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}

	var oe *net.OpError
	if errors.As(err, &oe) && oe.Op == "dial" {
		if oe.Timeout() || errors.Is(oe, context.DeadlineExceeded) {
			// A budget that expired during the dial outranks the
			// connect attribution.
			var te *TimeoutError
			if cause := context.Cause(ctx); errors.As(cause, &te) {
				return te
			}
			return errConnectTimeout
		}
		return errConnectionFailed{host: host, err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		var te *TimeoutError
		if cause := context.Cause(ctx); errors.As(cause, &te) {
			return te
		}
		// The deadline came from the caller's own context.
		return err
	}
	if errors.Is(err, context.Canceled) {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			var te *TimeoutError
			if errors.As(cause, &te) {
				return te
			}
		}
		return err
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return errConnectTimeout
	}

	return errConnectionFailed{host: host, err: err}
}
