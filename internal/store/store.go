// Package store talks to the hosted tabular record store that owns the
// collection rows. The catalog never mutates rows itself; all writes go
// through the admin endpoints and back out through a full refetch.
package store

import (
	"context"
	"errors"

	"vinylapi/internal/catalog"
)

// ErrNotFound reports that the store has no row with the requested id.
var ErrNotFound = errors.New("record not found")

// Fields is the writable subset of a row, as submitted by the admin UI.
type Fields struct {
	Album  string
	Artist string
	Year   string
	Status string
	Image  string
}

// Repository is the record-store boundary. List returns the full set in
// one call; the store is small enough that no read-side paging contract is
// exposed to callers.
type Repository interface {
	List(ctx context.Context) ([]catalog.RawRecord, error)
	Create(ctx context.Context, f Fields) (catalog.RawRecord, error)
	Update(ctx context.Context, id string, f Fields) (catalog.RawRecord, error)
	Delete(ctx context.Context, id string) error
}

// rowFields maps writable fields onto the upstream column names. The image
// URL becomes a fresh attachment array; the store re-hosts the file and
// fills in thumbnails on its side.
func rowFields(f Fields) map[string]any {
	fields := map[string]any{
		"Album Name": f.Album,
		"Artist":     f.Artist,
		"Album Year": f.Year,
		"Status":     f.Status,
	}
	if f.Image != "" {
		fields["Images"] = []map[string]string{{"url": f.Image}}
	}
	return fields
}
