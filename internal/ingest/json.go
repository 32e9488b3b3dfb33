package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hearthlabs/hearth/internal/listings"
	"github.com/hearthlabs/hearth/internal/schema"
)

// JSONReader handles .json files: a top-level array of listing objects.
type JSONReader struct{}

// CanHandle returns true for JSON file extensions.
func (j *JSONReader) CanHandle(path string) bool {
	return extOf(path) == ".json"
}

// Read parses a JSON array of listings. Each element is validated
// against the listing wire contract before decoding, so a schema
// failure names the offending element rather than producing a
// half-decoded struct.
func (j *JSONReader) Read(_ context.Context, path string) ([]schema.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s (expected an array of listings): %w", path, err)
	}

	out := make([]schema.Listing, 0, len(elems))
	for i, raw := range elems {
		if err := listings.ValidateRaw(raw); err != nil {
			return nil, fmt.Errorf("%s element %d: %w", path, i, err)
		}
		var l schema.Listing
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("%s element %d: %w", path, i, err)
		}
		out = append(out, l)
	}
	return out, nil
}
