package clock

import (
	"context"
	"time"
)

type SystemClock struct{}

func (SystemClock) Now(ctx context.Context) time.Time {
	if t, ok := FrozenFromContext(ctx); ok {
		return t
	}
	return time.Now().UTC()
}

// Fixed always reports the same instant. Used by tests and one-off backfills.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now(context.Context) time.Time {
	return f.At.UTC()
}

type frozenKey struct{}

// WithFrozen pins SystemClock.Now for everything running under ctx.
func WithFrozen(ctx context.Context, at time.Time) context.Context {
	return context.WithValue(ctx, frozenKey{}, at.UTC())
}

func FrozenFromContext(ctx context.Context) (time.Time, bool) {
	if ctx == nil {
		return time.Time{}, false
	}
	t, ok := ctx.Value(frozenKey{}).(time.Time)
	return t, ok
}
