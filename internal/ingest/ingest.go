// Package ingest loads listing inventories into the SQLite provider.
//
// Each supported format (JSON, CSV) has its own reader implementing the
// Reader interface. The engine auto-detects formats by file extension
// and dispatches to the correct parser. Every listing is shape-checked
// before it reaches the database; a malformed listing aborts the run.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hearthlabs/hearth/internal/listings"
	"github.com/hearthlabs/hearth/internal/schema"
)

// Reader parses one source format into listings.
type Reader interface {
	// CanHandle reports whether this reader understands the file.
	CanHandle(path string) bool

	// Read parses the file into listings. Shape errors are fatal.
	Read(ctx context.Context, path string) ([]schema.Listing, error)
}

// Result summarizes a completed ingest run.
type Result struct {
	Path     string
	Imported int
}

// Engine dispatches files to readers and loads listings into the store.
type Engine struct {
	readers []Reader
	store   *listings.SQLiteProvider
}

// NewEngine returns an engine with the default readers registered.
func NewEngine(store *listings.SQLiteProvider) *Engine {
	return &Engine{
		readers: []Reader{&JSONReader{}, &CSVReader{}},
		store:   store,
	}
}

// Run ingests one file: detect format, parse, and load in a single
// batch so a bad listing leaves the store untouched.
func (e *Engine) Run(ctx context.Context, path string) (Result, error) {
	reader := e.readerFor(path)
	if reader == nil {
		return Result{}, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}

	parsed, err := reader.Read(ctx, path)
	if err != nil {
		return Result{}, err
	}
	if len(parsed) == 0 {
		return Result{Path: path}, nil
	}

	if err := e.store.PutBatch(ctx, parsed); err != nil {
		return Result{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return Result{Path: path, Imported: len(parsed)}, nil
}

func (e *Engine) readerFor(path string) Reader {
	for _, r := range e.readers {
		if r.CanHandle(path) {
			return r
		}
	}
	return nil
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
