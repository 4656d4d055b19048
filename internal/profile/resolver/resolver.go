// Package resolver implements the profile cache and resolver: an in-memory
// map of resolved profiles with synchronous total lookup, idempotent
// ingestion, and a batched preload that backfills gaps from an external
// profile source with at-most-one fetch in flight per identifier.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"profiled/internal/profile"
	"profiled/internal/profile/metrics"
	"profiled/internal/profile/snapshot"
	"profiled/internal/profile/source"
	"profiled/pkg/platform/sentinel"
)

var tracer = otel.Tracer("profiled/internal/profile/resolver")

// FetchError reports a failed preload against the external source. It
// preserves the underlying cause so callers can tell "no data available"
// apart from "fetch failed".
type FetchError struct {
	IDs []string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %d profile(s): %v", len(e.IDs), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// flight is one in-progress batched fetch. err is written before done is
// closed and never after, so waiters may read it once done is closed.
type flight struct {
	done chan struct{}
	err  error
}

// Resolver holds the identifier -> resolved profile mapping. Construct one
// per call site; there is no package-level instance.
type Resolver struct {
	src       source.Source
	snapshots snapshot.Store
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu       sync.RWMutex
	profiles map[string]profile.ResolvedProfile
	inflight map[string]*flight
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSnapshots wires a read-through snapshot store consulted by Get on a
// map miss. Snapshot hits are returned but never written into the map.
func WithSnapshots(store snapshot.Store) Option {
	return func(r *Resolver) { r.snapshots = store }
}

// WithLogger sets the logger used for degraded-path diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics wires the profile metrics set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New constructs a Resolver backed by the given batched source. A nil source
// is allowed; Preload then fails for identifiers that would need fetching
// while Get keeps serving cached and fallback data.
func New(src source.Source, opts ...Option) *Resolver {
	r := &Resolver{
		src:      src,
		logger:   slog.Default(),
		profiles: make(map[string]profile.ResolvedProfile),
		inflight: make(map[string]*flight),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Ingest normalizes and stores every raw record (fresh data always wins),
// then synthesizes fallback profiles for known identifiers still missing so
// later lookups never miss. Idempotent.
func (r *Resolver) Ingest(raw map[string]profile.RawProfile, knownIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, record := range raw {
		r.profiles[id] = profile.Normalize(id, &record)
	}
	for _, id := range knownIDs {
		if _, ok := r.profiles[id]; !ok {
			r.profiles[id] = profile.Fallback(id)
		}
	}
	r.metrics.SetResolvedProfiles(len(r.profiles))
}

// Get resolves an identifier: in-memory map first, then the snapshot store
// as a read-through fallback, then a synthesized fallback profile. Total —
// it always returns a complete profile and never an error.
//
// A snapshot hit is not promoted into the map; only Ingest and a successful
// Preload write entries.
func (r *Resolver) Get(ctx context.Context, id string) profile.ResolvedProfile {
	r.mu.RLock()
	resolved, ok := r.profiles[id]
	r.mu.RUnlock()
	if ok {
		r.metrics.IncrementLookup("cache")
		return resolved
	}

	if r.snapshots != nil {
		raw, err := r.snapshots.Find(ctx, id)
		if err == nil {
			r.metrics.IncrementLookup("snapshot")
			return profile.Normalize(id, raw)
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			r.logger.DebugContext(ctx, "snapshot lookup failed, serving fallback",
				"user_id", id,
				"error", err,
			)
		}
	}

	r.metrics.IncrementLookup("fallback")
	return profile.Fallback(id)
}

// Preload backfills the in-memory map for the given identifiers. Identifiers
// already resolved are skipped; identifiers already being fetched attach to
// the in-flight operation; the rest go out as one batched fetch. On failure
// the map is untouched and the in-flight markers are cleared, so a retry is
// always possible.
//
// Identifiers the source returned no data for are left unresolved rather
// than cached as fallbacks; Get synthesizes those lazily.
func (r *Resolver) Preload(ctx context.Context, ids []string) error {
	ctx, span := tracer.Start(ctx, "Resolver.Preload")
	defer span.End()
	span.SetAttributes(attribute.Int("profile.requested", len(ids)))

	start := time.Now()

	r.mu.Lock()
	var toFetch []string
	waits := make(map[*flight]struct{})
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := r.profiles[id]; ok {
			continue
		}
		if f, ok := r.inflight[id]; ok {
			if _, seen := waits[f]; !seen {
				r.metrics.IncrementSharedFetch()
			}
			waits[f] = struct{}{}
			continue
		}
		toFetch = append(toFetch, id)
	}

	var own *flight
	if len(toFetch) > 0 {
		if r.src == nil {
			r.mu.Unlock()
			return &FetchError{IDs: toFetch, Err: sentinel.ErrUnavailable}
		}
		own = &flight{done: make(chan struct{})}
		for _, id := range toFetch {
			r.inflight[id] = own
		}
	}
	r.mu.Unlock()

	if own != nil {
		// The fetch is shared with any preload that attaches later, so it
		// must outlive this caller's context.
		go r.fetch(context.WithoutCancel(ctx), own, toFetch)
		waits[own] = struct{}{}
	}

	for f := range waits {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			if f.err != nil {
				return f.err
			}
		}
	}

	r.metrics.ObservePreloadLatency(time.Since(start))
	return nil
}

// fetch runs the batched source call for one flight and publishes the
// outcome. Exactly one fetch runs per flight; all waiters observe the same
// result.
func (r *Resolver) fetch(ctx context.Context, f *flight, ids []string) {
	fetched, err := r.src.FetchMany(ctx, ids)

	r.mu.Lock()
	if err == nil {
		for id, record := range fetched {
			r.profiles[id] = profile.Normalize(id, &record)
		}
		r.metrics.SetResolvedProfiles(len(r.profiles))
	}
	for _, id := range ids {
		if r.inflight[id] == f {
			delete(r.inflight, id)
		}
	}
	r.mu.Unlock()

	if err != nil {
		f.err = &FetchError{IDs: ids, Err: err}
		r.logger.WarnContext(ctx, "profile preload failed",
			"requested", len(ids),
			"error", err,
		)
	}
	close(f.done)
}

// Invalidate evicts the given identifiers from the in-memory map. Eviction
// is explicit only; the resolver applies no TTL of its own.
func (r *Resolver) Invalidate(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.profiles, id)
	}
	r.metrics.SetResolvedProfiles(len(r.profiles))
}

// Reset drops every resolved profile. In-flight fetches are unaffected and
// will still publish their results when they complete.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = make(map[string]profile.ResolvedProfile)
	r.metrics.SetResolvedProfiles(0)
}

// Len reports how many resolved profiles the map currently holds.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// Resolved reports whether the in-memory map holds an entry for id, without
// taking any fallback path. Diagnostics only.
func (r *Resolver) Resolved(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.profiles[id]
	return ok
}
