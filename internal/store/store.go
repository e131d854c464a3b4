// Package store persists fraud case records. Two backends are provided:
// PostgreSQL for shared deployments and SQLite for single-machine runs.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gifia/fraud-intel/internal/model"
)

// ErrDuplicateURL is returned by SaveCase when a record with the same source
// URL already exists. The unique constraint on source_url makes concurrent
// saves of the same article safe.
var ErrDuplicateURL = eris.New("store: case with this source URL already exists")

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = eris.New("store: case not found")

// Store is the persistence surface the pipeline depends on.
type Store interface {
	// SaveCase inserts a record and returns its assigned ID. Returns
	// ErrDuplicateURL when the source URL is already present.
	SaveCase(ctx context.Context, rec *model.CaseRecord) (string, error)

	// GetCaseByURL returns the record with the given source URL, or
	// ErrNotFound.
	GetCaseByURL(ctx context.Context, url string) (*model.CaseRecord, error)

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.CaseRecord, error)

	// ListSourceURLs returns up to limit stored source URLs, newest first.
	ListSourceURLs(ctx context.Context, limit int) ([]string, error)

	// Migrate creates or updates the schema.
	Migrate(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// Open constructs a Store for the configured driver.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgresStore(ctx, databaseURL)
	case "sqlite", "":
		return NewSQLiteStore(databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
