package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"profiled/internal/profile"
)

// fetchChunkSize bounds the number of identifiers per query so a large
// preload fans out across the pool instead of building one giant IN list.
const fetchChunkSize = 200

var tracer = otel.Tracer("profiled/internal/profile/source")

// PostgresSource reads raw profiles from the user_profiles table.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource constructs a PostgreSQL-backed profile source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// FetchMany batch-selects the requested identifiers. Chunks are fetched in
// parallel; the first chunk error fails the whole call (the resolver relies
// on all-or-nothing semantics).
func (s *PostgresSource) FetchMany(ctx context.Context, ids []string) (map[string]profile.RawProfile, error) {
	ctx, span := tracer.Start(ctx, "PostgresSource.FetchMany")
	defer span.End()
	span.SetAttributes(attribute.Int("profile.requested", len(ids)))

	if len(ids) == 0 {
		return map[string]profile.RawProfile{}, nil
	}

	var mu sync.Mutex
	out := make(map[string]profile.RawProfile, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(ids); start += fetchChunkSize {
		chunk := ids[start:min(start+fetchChunkSize, len(ids))]
		g.Go(func() error {
			fetched, err := s.fetchChunk(ctx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			for id, raw := range fetched {
				out[id] = raw
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("profile.returned", len(out)))
	return out, nil
}

func (s *PostgresSource) fetchChunk(ctx context.Context, ids []string) (map[string]profile.RawProfile, error) {
	query := `
		SELECT user_id, name, email, display_name, country, bio, avatar_url, timezone, country_display
		FROM user_profiles
		WHERE user_id = ANY($1)
	`
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	defer rows.Close()

	out := make(map[string]profile.RawProfile, len(ids))
	for rows.Next() {
		var (
			userID string
			raw    rawRow
		)
		if err := rows.Scan(
			&userID,
			&raw.name, &raw.email, &raw.displayName, &raw.country,
			&raw.bio, &raw.avatarURL, &raw.timezone, &raw.countryDisplay,
		); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		out[userID] = raw.toRawProfile()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}
	return out, nil
}

// rawRow carries nullable columns; nil means SQL NULL.
type rawRow struct {
	name           *string
	email          *string
	displayName    *string
	country        *string
	bio            *string
	avatarURL      *string
	timezone       *string
	countryDisplay *string
}

func (r rawRow) toRawProfile() profile.RawProfile {
	return profile.RawProfile{
		Name:           deref(r.name),
		Email:          deref(r.email),
		DisplayName:    deref(r.displayName),
		Country:        deref(r.country),
		Bio:            deref(r.bio),
		AvatarURL:      deref(r.avatarURL),
		Timezone:       deref(r.timezone),
		CountryDisplay: deref(r.countryDisplay),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
