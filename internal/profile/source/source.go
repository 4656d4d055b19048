// Package source defines the external profile source the resolver preloads
// from, plus its production implementations.
package source

import (
	"context"

	"profiled/internal/profile"
)

// Source is the batched profile backend. FetchMany returns raw records for
// the identifiers it has data for; identifiers absent from the result simply
// had no data, which is not an error. Any returned error means the whole
// call failed and nothing in the result may be used.
type Source interface {
	FetchMany(ctx context.Context, ids []string) (map[string]profile.RawProfile, error)
}
