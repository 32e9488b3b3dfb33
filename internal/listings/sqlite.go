package listings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/hearthlabs/hearth/internal/schema"
	"github.com/hearthlabs/hearth/internal/search"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.hearth/hearth.db"

// SQLiteConfig holds configuration for NewSQLiteProvider.
type SQLiteConfig struct {
	DBPath string
}

// SQLiteProvider stores listings in SQLite. Cheap scalar filters
// (price, property type) run in SQL; the full conjunctive match,
// sorting, and pagination run through the search engine so SQL and
// in-memory providers agree on every edge case.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens (creating if needed) the listings database.
// Pass ":memory:" for in-memory databases (testing).
func NewSQLiteProvider(cfg SQLiteConfig) (*SQLiteProvider, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteProvider{db: db, dbPath: cfg.DBPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteProvider) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			id TEXT PRIMARY KEY,
			address TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			zip TEXT NOT NULL DEFAULT '',
			price INTEGER NOT NULL,
			beds INTEGER NOT NULL DEFAULT 0,
			baths INTEGER NOT NULL DEFAULT 0,
			sqft INTEGER NOT NULL DEFAULT 0,
			lot_size INTEGER NOT NULL DEFAULT 0,
			year_built INTEGER NOT NULL DEFAULT 0,
			property_type TEXT NOT NULL,
			days_on_market INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			photos TEXT NOT NULL DEFAULT '[]',
			hero_photo TEXT NOT NULL DEFAULT '',
			listing_url TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			excerpt TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_type ON listings(property_type)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

func (s *SQLiteProvider) Name() string { return "sqlite" }

// Put inserts or replaces a listing.
func (s *SQLiteProvider) Put(ctx context.Context, l schema.Listing) error {
	if l.ID == "" {
		return &ShapeError{Reason: "missing id"}
	}
	if l.Address == "" || l.City == "" || l.State == "" {
		return &ShapeError{ID: l.ID, Reason: "missing address fields"}
	}
	if !schema.ValidPropertyType(l.PropertyType) {
		return &ShapeError{ID: l.ID, Reason: fmt.Sprintf("unknown property type %q", l.PropertyType)}
	}

	photosJSON, err := json.Marshal(emptyIfNil(l.Photos))
	if err != nil {
		return fmt.Errorf("encoding photos: %w", err)
	}
	tagsJSON, err := json.Marshal(emptyIfNil(l.Tags))
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO listings
		(id, address, city, state, zip, price, beds, baths, sqft, lot_size,
		 year_built, property_type, days_on_market, status, photos,
		 hero_photo, listing_url, tags, excerpt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Address, l.City, l.State, l.Zip, l.Price, l.Beds, l.Baths,
		l.Sqft, l.LotSize, l.YearBuilt, string(l.PropertyType), l.DaysOnMarket,
		l.Status, string(photosJSON), l.HeroPhoto, l.ListingURL,
		string(tagsJSON), l.Excerpt)
	if err != nil {
		return fmt.Errorf("inserting listing %s: %w", l.ID, err)
	}
	return nil
}

// PutBatch inserts listings in a single transaction. The transaction
// rolls back on the first bad listing so an ingest run is all-or-nothing.
func (s *SQLiteProvider) PutBatch(ctx context.Context, listings []schema.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO listings
		(id, address, city, state, zip, price, beds, baths, sqft, lot_size,
		 year_built, property_type, days_on_market, status, photos,
		 hero_photo, listing_url, tags, excerpt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		if l.ID == "" {
			return &ShapeError{Reason: "missing id"}
		}
		if l.Address == "" || l.City == "" || l.State == "" {
			return &ShapeError{ID: l.ID, Reason: "missing address fields"}
		}
		if !schema.ValidPropertyType(l.PropertyType) {
			return &ShapeError{ID: l.ID, Reason: fmt.Sprintf("unknown property type %q", l.PropertyType)}
		}
		photosJSON, err := json.Marshal(emptyIfNil(l.Photos))
		if err != nil {
			return fmt.Errorf("encoding photos: %w", err)
		}
		tagsJSON, err := json.Marshal(emptyIfNil(l.Tags))
		if err != nil {
			return fmt.Errorf("encoding tags: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			l.ID, l.Address, l.City, l.State, l.Zip, l.Price, l.Beds, l.Baths,
			l.Sqft, l.LotSize, l.YearBuilt, string(l.PropertyType), l.DaysOnMarket,
			l.Status, string(photosJSON), l.HeroPhoto, l.ListingURL,
			string(tagsJSON), l.Excerpt); err != nil {
			return fmt.Errorf("inserting listing %s: %w", l.ID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored listings.
func (s *SQLiteProvider) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting listings: %w", err)
	}
	return n, nil
}

// Search prefilters in SQL, then delegates the full match, sort, and
// pagination to the search engine. Rowid order is the relevance order.
func (s *SQLiteProvider) Search(ctx context.Context, f schema.FilterSet) (schema.ResultPage, error) {
	var (
		conds []string
		args  []any
	)
	if f.Price != nil {
		if f.Price.Min != nil {
			conds = append(conds, "price >= ?")
			args = append(args, *f.Price.Min)
		}
		if f.Price.Max != nil {
			conds = append(conds, "price <= ?")
			args = append(args, *f.Price.Max)
		}
	}
	if len(f.PropertyTypes) > 0 {
		marks := make([]string, len(f.PropertyTypes))
		for i, pt := range f.PropertyTypes {
			marks[i] = "?"
			args = append(args, string(pt))
		}
		conds = append(conds, "property_type IN ("+strings.Join(marks, ", ")+")")
	}

	query := `SELECT id, address, city, state, zip, price, beds, baths, sqft,
		lot_size, year_built, property_type, days_on_market, status, photos,
		hero_photo, listing_url, tags, excerpt FROM listings`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return schema.ResultPage{}, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var candidates []schema.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return schema.ResultPage{}, err
		}
		candidates = append(candidates, l)
	}
	if err := rows.Err(); err != nil {
		return schema.ResultPage{}, fmt.Errorf("reading listings: %w", err)
	}

	return search.Run(candidates, f), nil
}

func scanListing(rows *sql.Rows) (schema.Listing, error) {
	var l schema.Listing
	var propertyType, photosJSON, tagsJSON string
	if err := rows.Scan(&l.ID, &l.Address, &l.City, &l.State, &l.Zip, &l.Price,
		&l.Beds, &l.Baths, &l.Sqft, &l.LotSize, &l.YearBuilt, &propertyType,
		&l.DaysOnMarket, &l.Status, &photosJSON, &l.HeroPhoto, &l.ListingURL,
		&tagsJSON, &l.Excerpt); err != nil {
		return schema.Listing{}, fmt.Errorf("scanning listing: %w", err)
	}
	l.PropertyType = schema.PropertyType(propertyType)
	if err := json.Unmarshal([]byte(photosJSON), &l.Photos); err != nil {
		return schema.Listing{}, fmt.Errorf("decoding photos for %s: %w", l.ID, err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &l.Tags); err != nil {
		return schema.Listing{}, fmt.Errorf("decoding tags for %s: %w", l.ID, err)
	}
	return l, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// expandPath expands a leading ~ to the user home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
