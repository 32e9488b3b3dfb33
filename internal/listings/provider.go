// Package listings provides the listing inventory behind search:
// a static in-memory seed set for demos and tests, and a SQLite-backed
// provider for real inventories loaded through ingest.
//
// Both providers delegate filtering, sorting, and pagination to the
// search engine so results are identical regardless of backing store.
package listings

import (
	"context"
	"fmt"

	"github.com/hearthlabs/hearth/internal/schema"
)

// Provider serves listing search results for a filter set.
type Provider interface {
	// Search returns the page of listings matching f. Implementations
	// must apply the same conjunctive semantics as the search engine.
	Search(ctx context.Context, f schema.FilterSet) (schema.ResultPage, error)

	// Name identifies the provider for logging.
	Name() string
}

// ShapeError reports listing data that failed shape validation on the
// way in. It is fatal: malformed inventory should stop an ingest run
// rather than surface as silently-missing search results.
type ShapeError struct {
	ID     string // listing id when known, "" otherwise
	Reason string
}

func (e *ShapeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid listing: %s", e.Reason)
	}
	return fmt.Sprintf("invalid listing %s: %s", e.ID, e.Reason)
}
