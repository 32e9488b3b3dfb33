package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hearthlabs/hearth/internal/listings"
	"github.com/hearthlabs/hearth/internal/schema"
)

// CSVReader handles .csv and .tsv listing exports.
// The first row is treated as headers; header names match the JSON
// field names (id, address, city, state, zip, price, beds, baths,
// sqft, lotSize, yearBuilt, propertyType, daysOnMarket, status,
// heroPhoto, listingUrl, excerpt). Multi-valued photos and tags use
// "|" as the separator within a cell.
type CSVReader struct{}

// CanHandle returns true for CSV/TSV file extensions.
func (c *CSVReader) CanHandle(path string) bool {
	ext := extOf(path)
	return ext == ".csv" || ext == ".tsv"
}

// Read parses a delimited file into listings, one per data row.
func (c *CSVReader) Read(_ context.Context, path string) ([]schema.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	if extOf(path) == ".tsv" {
		reader.Comma = '\t'
	} else {
		// Not for tabs: with a tab delimiter this swallows the tab
		// opening an empty field and shifts the whole row.
		reader.TrimLeadingSpace = true
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV %s: %w", path, err)
	}
	if len(records) < 2 {
		// Headers only, or empty.
		return nil, nil
	}

	headers := records[0]
	var out []schema.Listing
	for i, row := range records[1:] {
		cells := make(map[string]string, len(headers))
		for j, val := range row {
			if j < len(headers) {
				cells[strings.TrimSpace(headers[j])] = strings.TrimSpace(val)
			}
		}

		l, err := listingFromCells(cells)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func listingFromCells(cells map[string]string) (schema.Listing, error) {
	l := schema.Listing{
		ID:           cells["id"],
		Address:      cells["address"],
		City:         cells["city"],
		State:        cells["state"],
		Zip:          cells["zip"],
		PropertyType: schema.PropertyType(cells["propertyType"]),
		Status:       cells["status"],
		HeroPhoto:    cells["heroPhoto"],
		ListingURL:   cells["listingUrl"],
		Excerpt:      cells["excerpt"],
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"price", &l.Price},
		{"beds", &l.Beds},
		{"baths", &l.Baths},
		{"sqft", &l.Sqft},
		{"lotSize", &l.LotSize},
		{"yearBuilt", &l.YearBuilt},
		{"daysOnMarket", &l.DaysOnMarket},
	}
	for _, f := range ints {
		raw := cells[f.key]
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return schema.Listing{}, fmt.Errorf("bad %s value %q: %w", f.key, raw, err)
		}
		*f.dst = n
	}

	if v := cells["photos"]; v != "" {
		l.Photos = splitMulti(v)
	}
	if v := cells["tags"]; v != "" {
		l.Tags = splitMulti(v)
	}

	if l.ID == "" {
		return schema.Listing{}, &listings.ShapeError{Reason: "missing id"}
	}
	if l.Address == "" || l.City == "" || l.State == "" {
		return schema.Listing{}, &listings.ShapeError{ID: l.ID, Reason: "missing address fields"}
	}
	if !schema.ValidPropertyType(l.PropertyType) {
		return schema.Listing{}, &listings.ShapeError{ID: l.ID, Reason: fmt.Sprintf("unknown property type %q", l.PropertyType)}
	}
	return l, nil
}

func splitMulti(v string) []string {
	parts := strings.Split(v, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
