// Package storage defines the Storage interface, the contract any document
// store backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the backend (SQLite, MongoDB,
// PostgreSQL or the in-memory store) is chosen in main.go and tests can pass
// the in-memory store or a fake.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/chapter-api/internal/types"
)

var (
	// ErrNotFound is returned when no record has the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidKey is returned when a record lacks a non-empty string
	// value for its collection's key attribute.
	ErrInvalidKey = errors.New("record key is missing or not a string")
)

// Collection names a group of records and the attribute that keys them.
type Collection struct {
	Name string
	Key  string
}

// KeyOf extracts and checks the key of rec.
func (c Collection) KeyOf(rec types.Record) (string, error) {
	key, ok := rec[c.Key].(string)
	if !ok || key == "" {
		return "", ErrInvalidKey
	}
	return key, nil
}

// Catalog is the fixed set of collections the site uses.
type Catalog struct {
	Team          Collection
	Members       Collection
	Events        Collection
	Gallery       Collection
	Registrations Collection
	Users         Collection
}

// NewCatalog builds the catalog with every collection name prefixed,
// e.g. NewCatalog("ieee-").Team.Name == "ieee-Team".
func NewCatalog(prefix string) Catalog {
	return Catalog{
		Team:          Collection{Name: prefix + "Team", Key: types.AttrID},
		Members:       Collection{Name: prefix + "Members", Key: types.AttrID},
		Events:        Collection{Name: prefix + "Events", Key: types.AttrID},
		Gallery:       Collection{Name: prefix + "Gallery", Key: types.AttrID},
		Registrations: Collection{Name: prefix + "Registrations", Key: types.AttrRegistrationID},
		Users:         Collection{Name: prefix + "Users", Key: types.AttrUsername},
	}
}

// All lists every collection in the catalog.
func (c Catalog) All() []Collection {
	return []Collection{c.Team, c.Members, c.Events, c.Gallery, c.Registrations, c.Users}
}

// Storage is the document store contract.
type Storage interface {
	// FetchAll returns every record in the collection, in no particular
	// order. An empty collection yields an empty, non-nil slice; a store
	// failure yields an error.
	FetchAll(ctx context.Context, c Collection) ([]types.Record, error)

	// GetItem returns the record with the given key, or ErrNotFound.
	GetItem(ctx context.Context, c Collection, key string) (types.Record, error)

	// PutItem inserts rec or fully replaces the record with the same key.
	PutItem(ctx context.Context, c Collection, rec types.Record) error

	// DeleteItem removes the record with the given key. Deleting an absent
	// key is not an error.
	DeleteItem(ctx context.Context, c Collection, key string) error

	// SetAttribute writes one attribute of an existing record, leaving the
	// rest untouched. Returns ErrNotFound when the record does not exist.
	SetAttribute(ctx context.Context, c Collection, key, attr string, value any) error

	// Close releases the underlying connections.
	Close() error
}
