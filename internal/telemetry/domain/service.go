package domain

import (
	"context"
	"errors"
)

// Service is the surface the rest of the platform consumes.
type Service interface {
	// Get serves the cached snapshot, computing one synchronously on a miss.
	Get(ctx context.Context) (Snapshot, error)
	// Collect recomputes every metric and replaces the cached snapshot.
	Collect(ctx context.Context) (Snapshot, error)
}

var ErrCollectFailed = errors.New("telemetry_collect_failed")
