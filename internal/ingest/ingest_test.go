package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hearthlabs/hearth/internal/listings"
	"github.com/hearthlabs/hearth/internal/schema"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func newEngine(t *testing.T) (*Engine, *listings.SQLiteProvider) {
	t.Helper()
	store, err := listings.NewSQLiteProvider(listings.SQLiteConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewEngine(store), store
}

const goodJSON = `[
  {"id": "j-1", "address": "1 Main St", "city": "Denver", "state": "CO",
   "zip": "80202", "price": 500000, "beds": 2, "baths": 1,
   "propertyType": "condo", "daysOnMarket": 4,
   "photos": ["https://example.com/a.jpg"], "tags": ["New"],
   "excerpt": "Corner unit with garage."},
  {"id": "j-2", "address": "9 Oak Ave", "city": "Denver", "state": "CO",
   "price": 725000, "beds": 4, "baths": 3, "propertyType": "single_family"}
]`

func TestIngestJSON(t *testing.T) {
	engine, store := newEngine(t)
	path := writeFile(t, "listings.json", goodJSON)

	res, err := engine.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Imported != 2 {
		t.Errorf("imported: got %d, want 2", res.Imported)
	}

	page, err := store.Search(context.Background(), schema.FilterSet{Keywords: []string{"garage"}, Page: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "j-1" {
		t.Errorf("got %+v, want j-1 only", page.Items)
	}
}

func TestIngestJSONRejectsBadListing(t *testing.T) {
	engine, store := newEngine(t)
	bad := `[{"id": "j-1", "address": "1 Main St", "city": "Denver", "state": "CO",
	          "price": 500000, "propertyType": "castle"}]`
	path := writeFile(t, "bad.json", bad)

	_, err := engine.Run(context.Background(), path)
	var shapeErr *listings.ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("got %v, want ShapeError", err)
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Errorf("bad file partially loaded: %d rows", n)
	}
}

func TestIngestJSONRejectsNonArray(t *testing.T) {
	engine, _ := newEngine(t)
	path := writeFile(t, "obj.json", `{"id": "j-1"}`)
	if _, err := engine.Run(context.Background(), path); err == nil {
		t.Fatal("expected error for non-array JSON")
	}
}

const goodCSV = `id,address,city,state,zip,price,beds,baths,propertyType,daysOnMarket,tags,excerpt
c-1,10 Pine St,Portland,OR,97211,450000,2,1,single_family,6,New|Open house,Bungalow with garden.
c-2,77 SW 5th Ave #900,Portland,OR,97204,380000,1,1,condo,12,,City views near transit.
`

func TestIngestCSV(t *testing.T) {
	engine, store := newEngine(t)
	path := writeFile(t, "listings.csv", goodCSV)

	res, err := engine.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Imported != 2 {
		t.Errorf("imported: got %d, want 2", res.Imported)
	}

	page, err := store.Search(context.Background(), schema.FilterSet{Location: "Portland, OR", Page: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total: got %d, want 2", page.Total)
	}
	first := page.Items[0]
	if first.ID != "c-1" || first.Price != 450000 || len(first.Tags) != 2 {
		t.Errorf("row decode: %+v", first)
	}
}

func TestIngestTSV(t *testing.T) {
	engine, store := newEngine(t)
	tsv := strings.ReplaceAll(goodCSV, ",", "\t")
	// The tag separator survives the comma swap; excerpts here contain no commas.
	// Row c-2's empty tags cell yields consecutive tabs, which a reader that
	// trims leading whitespace would collapse, shifting every later column.
	path := writeFile(t, "listings.tsv", tsv)

	res, err := engine.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Imported != 2 {
		t.Errorf("imported: got %d, want 2", res.Imported)
	}

	page, err := store.Search(context.Background(), schema.FilterSet{Location: "Portland, OR", Page: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, l := range page.Items {
		if l.ID == "c-2" {
			if len(l.Tags) != 0 || l.Excerpt != "City views near transit." || l.DaysOnMarket != 12 {
				t.Errorf("empty-cell row decoded wrong: %+v", l)
			}
			return
		}
	}
	t.Error("c-2 not ingested")
}

func TestIngestCSVBadNumber(t *testing.T) {
	engine, _ := newEngine(t)
	bad := "id,address,city,state,price,propertyType\nc-1,1 Main St,Denver,CO,lots,condo\n"
	path := writeFile(t, "bad.csv", bad)
	if _, err := engine.Run(context.Background(), path); err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}

func TestIngestUnsupportedFormat(t *testing.T) {
	engine, _ := newEngine(t)
	path := writeFile(t, "listings.xml", "<listings/>")
	if _, err := engine.Run(context.Background(), path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestIngestEmptyCSV(t *testing.T) {
	engine, _ := newEngine(t)
	path := writeFile(t, "empty.csv", "id,address,city,state\n")
	res, err := engine.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Imported != 0 {
		t.Errorf("imported: got %d, want 0", res.Imported)
	}
}
