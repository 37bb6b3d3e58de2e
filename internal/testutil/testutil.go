// Package testutil holds helpers shared by handler tests.
package testutil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/types"
)

// AdminToken is the token tests configure the gate with.
const AdminToken = "my-secret-admin-token"

// ErrStoreDown is what FailingStore returns from every call.
var ErrStoreDown = errors.New("store unavailable")

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler without a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewJSONRequest builds a request with a JSON body.
func NewJSONRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// FailingStore fails every operation with ErrStoreDown and counts writes,
// so tests can assert a path never reached the store.
type FailingStore struct {
	Writes int
}

func (f *FailingStore) FetchAll(context.Context, storage.Collection) ([]types.Record, error) {
	return nil, ErrStoreDown
}

func (f *FailingStore) GetItem(context.Context, storage.Collection, string) (types.Record, error) {
	return nil, ErrStoreDown
}

func (f *FailingStore) PutItem(context.Context, storage.Collection, types.Record) error {
	f.Writes++
	return ErrStoreDown
}

func (f *FailingStore) DeleteItem(context.Context, storage.Collection, string) error {
	f.Writes++
	return ErrStoreDown
}

func (f *FailingStore) SetAttribute(context.Context, storage.Collection, string, string, any) error {
	f.Writes++
	return ErrStoreDown
}

func (f *FailingStore) Close() error { return nil }
