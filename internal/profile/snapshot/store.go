// Package snapshot holds raw profile snapshots used as a read-through
// fallback by the resolver. A snapshot hit is served directly but never
// promoted into the resolver's in-memory map, so possibly-stale external
// data is not cached without the caller's knowledge.
package snapshot

import (
	"context"
	"time"

	"profiled/internal/profile"
)

// Store provides access to raw profile snapshots keyed by user identifier.
// Find returns sentinel.ErrNotFound when no snapshot exists for the id.
type Store interface {
	Find(ctx context.Context, id string) (*profile.RawProfile, error)
	Save(ctx context.Context, id string, raw profile.RawProfile, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
