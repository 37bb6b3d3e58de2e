// Package storagetest holds the behavior every storage.Storage backend must
// show. Backend tests call Run with a constructor for a fresh, empty store.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/types"
)

// Catalog is the catalog the suite writes to.
var Catalog = storage.NewCatalog("test-")

// Run executes the suite. newStore must return an empty store; the suite
// closes it when each subtest ends.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"FetchAllEmpty", testFetchAllEmpty},
		{"PutThenFetch", testPutThenFetch},
		{"PutReplacesWholeRecord", testPutReplaces},
		{"PutRejectsMissingKey", testPutRejectsMissingKey},
		{"GetItem", testGetItem},
		{"DeleteIsIdempotent", testDeleteIdempotent},
		{"SetAttribute", testSetAttribute},
		{"SetAttributeMissingRecord", testSetAttributeMissing},
		{"CollectionsAreIndependent", testCollectionsIndependent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testFetchAllEmpty(t *testing.T, s storage.Storage) {
	ctx := testContext(t)

	recs, err := s.FetchAll(ctx, Catalog.Team)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func testPutThenFetch(t *testing.T, s storage.Storage) {
	ctx := testContext(t)

	require.NoError(t, s.PutItem(ctx, Catalog.Team, types.Record{"id": "a", "name": "Ada", "role": "Chair"}))
	require.NoError(t, s.PutItem(ctx, Catalog.Team, types.Record{"id": "b", "name": "Grace"}))

	recs, err := s.FetchAll(ctx, Catalog.Team)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byID := map[string]types.Record{}
	for _, r := range recs {
		byID[r.String("id")] = r
	}
	assert.Equal(t, "Ada", byID["a"].String("name"))
	assert.Equal(t, "Chair", byID["a"].String("role"))
	assert.Equal(t, "Grace", byID["b"].String("name"))
}

func testPutReplaces(t *testing.T, s storage.Storage) {
	ctx := testContext(t)

	require.NoError(t, s.PutItem(ctx, Catalog.Events, types.Record{"id": "e1", "title": "Hackathon", "venue": "Hall A"}))
	require.NoError(t, s.PutItem(ctx, Catalog.Events, types.Record{"id": "e1", "title": "Hackathon 2"}))

	got, err := s.GetItem(ctx, Catalog.Events, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Hackathon 2", got.String("title"))
	_, hasVenue := got["venue"]
	assert.False(t, hasVenue, "replaced record must not keep old attributes")

	recs, err := s.FetchAll(ctx, Catalog.Events)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func testPutRejectsMissingKey(t *testing.T, s storage.Storage) {
	ctx := testContext(t)

	err := s.PutItem(ctx, Catalog.Users, types.Record{"password": "x"})
	assert.True(t, errors.Is(err, storage.ErrInvalidKey), "got %v", err)

	err = s.PutItem(ctx, Catalog.Users, types.Record{"username": ""})
	assert.True(t, errors.Is(err, storage.ErrInvalidKey), "got %v", err)
}

func testGetItem(t *testing.T, s storage.Storage) {
	ctx := testContext(t)

	require.NoError(t, s.PutItem(ctx, Catalog.Users, types.Record{"username": "ada", "password": "h", "isAdmin": true}))

	got, err := s.GetItem(ctx, Catalog.Users, "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", got.String("username"))
	assert.True(t, got.Bool("isAdmin"))

	_, err = s.GetItem(ctx, Catalog.Users, "nobody")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
}

func testDeleteIdempotent(t *testing.T, s storage.Storage) {
	ctx := testContext(t)

	require.NoError(t, s.PutItem(ctx, Catalog.Gallery, types.Record{"id": "g1", "url": "/img/1.jpg"}))
	require.NoError(t, s.DeleteItem(ctx, Catalog.Gallery, "g1"))
	require.NoError(t, s.DeleteItem(ctx, Catalog.Gallery, "g1"))
	require.NoError(t, s.DeleteItem(ctx, Catalog.Gallery, "never-existed"))

	recs, err := s.FetchAll(ctx, Catalog.Gallery)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func testSetAttribute(t *testing.T, s storage.Storage) {
	ctx := testContext(t)

	require.NoError(t, s.PutItem(ctx, Catalog.Users, types.Record{"username": "ada", "password": "h", "isAdmin": false}))
	require.NoError(t, s.SetAttribute(ctx, Catalog.Users, "ada", "isAdmin", true))

	got, err := s.GetItem(ctx, Catalog.Users, "ada")
	require.NoError(t, err)
	assert.True(t, got.Bool("isAdmin"))
	assert.Equal(t, "h", got.String("password"))

	require.NoError(t, s.SetAttribute(ctx, Catalog.Users, "ada", "isAdmin", false))
	got, err = s.GetItem(ctx, Catalog.Users, "ada")
	require.NoError(t, err)
	assert.False(t, got.Bool("isAdmin"))
}

func testSetAttributeMissing(t *testing.T, s storage.Storage) {
	ctx := testContext(t)

	err := s.SetAttribute(ctx, Catalog.Users, "ghost", "isAdmin", true)
	assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)

	_, err = s.GetItem(ctx, Catalog.Users, "ghost")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "SetAttribute must not create records")
}

func testCollectionsIndependent(t *testing.T, s storage.Storage) {
	ctx := testContext(t)

	require.NoError(t, s.PutItem(ctx, Catalog.Team, types.Record{"id": "same"}))
	require.NoError(t, s.PutItem(ctx, Catalog.Members, types.Record{"id": "same", "name": "member"}))
	require.NoError(t, s.DeleteItem(ctx, Catalog.Team, "same"))

	got, err := s.GetItem(ctx, Catalog.Members, "same")
	require.NoError(t, err)
	assert.Equal(t, "member", got.String("name"))
}
