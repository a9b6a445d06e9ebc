package txlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jmcamacho/auth-portal/internal/apperr"
)

// Wrap returns a function with the same signature as fn that emits
// transaction events around each invocation: STARTED and IN_PROGRESS
// before the call, COMPLETED on success, WARNING for 4xx-class
// application errors, ERROR otherwise, and TERMINATED in a deferred
// block regardless of outcome. The original error is returned
// unchanged. Wrapped operations are enumerated explicitly at
// construction time; there is no reflection over receivers.
func Wrap[A, R any](l *Logger, component, operation string, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		return Do(l, ctx, component, operation, arg, func(ctx context.Context) (R, error) {
			return fn(ctx, arg)
		})
	}
}

// Wrap0 is Wrap for operations taking only a context.
func Wrap0[R any](l *Logger, component, operation string, fn func(context.Context) (R, error)) func(context.Context) (R, error) {
	return func(ctx context.Context) (R, error) {
		return Do(l, ctx, component, operation, nil, fn)
	}
}

// WrapVoid is Wrap for operations without a result value.
func WrapVoid[A any](l *Logger, component, operation string, fn func(context.Context, A) error) func(context.Context, A) error {
	wrapped := Wrap(l, component, operation, func(ctx context.Context, arg A) (struct{}, error) {
		return struct{}{}, fn(ctx, arg)
	})
	return func(ctx context.Context, arg A) error {
		_, err := wrapped(ctx, arg)
		return err
	}
}

// Do runs fn under transaction logging. It backs the Wrap variants and
// serves call sites whose shape none of them fit.
func Do[R any](l *Logger, ctx context.Context, component, operation string, arg any, fn func(context.Context) (R, error)) (R, error) {
	ctx, _ = EnsureTransactionID(ctx)
	start := time.Now()

	l.Event(ctx, StateStarted, component, operation, "", arg)
	l.Event(ctx, StateInProgress, component, operation, "", nil)
	defer func() {
		l.Event(ctx, StateTerminated, component, operation, durationInfo(start), nil)
	}()

	result, err := fn(ctx)
	if err != nil {
		state := StateError
		if apperr.IsClientError(err) {
			state = StateWarning
		}
		l.Event(ctx, state, component, operation, durationInfo(start), err)
		return result, err
	}

	l.Event(ctx, StateCompleted, component, operation, durationInfo(start), result)
	return result, nil
}

func durationInfo(start time.Time) string {
	return fmt.Sprintf("Duration: %dms", time.Since(start).Milliseconds())
}
