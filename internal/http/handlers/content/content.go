// Package content contains the HTTP handlers for the site's admin-managed
// collections: team, members, events and gallery. The four share one shape
// (list publicly, create/update/delete as admin), so each handler factory
// takes the Resource it serves.
//
// The factories receive their dependencies once at startup and return the
// handler the router calls on every request:
//
//	r.Post("/team", content.New(store, team, log))
package content

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/types"
	"github.com/aanand-mishra/chapter-api/internal/utils/request"
	"github.com/aanand-mishra/chapter-api/internal/utils/response"
)

// Resource binds a URL segment to a collection and the noun used in
// confirmation messages.
type Resource struct {
	Path       string
	Collection storage.Collection
	Noun       string
}

// Resources lists the four content collections in route order.
func Resources(c storage.Catalog) []Resource {
	return []Resource{
		{Path: "team", Collection: c.Team, Noun: "Team member"},
		{Path: "members", Collection: c.Members, Noun: "Member"},
		{Path: "events", Collection: c.Events, Noun: "Event"},
		{Path: "gallery", Collection: c.Gallery, Noun: "Gallery item"},
	}
}

func (res Resource) lower() string { return strings.ToLower(res.Noun) }

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/{resource} (and GET /api/admin/registrations).
// Returns every record of the collection as a JSON array, [] when empty.
//
// Error responses:
//
//	500 Internal: the store could not be read
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage, res Resource, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("listing records", zap.String("collection", res.Collection.Name))

		records, err := store.FetchAll(r.Context(), res.Collection)
		if err != nil {
			log.Error("error listing records",
				zap.String("collection", res.Collection.Name),
				zap.Error(err))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Message("failed to load "+res.Path))
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/admin/{resource}
// Stores the body as a new record under a freshly generated id. Any "id"
// in the body is overwritten.
//
// Request body (JSON), any fields:
//
//	{ "name": "Ada", "role": "Chair" }
//
// Responses: 201 "<Noun> added.", 400 malformed JSON, 500 store failure.
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage, res Resource, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := decodeRecord(w, r)
		if !ok {
			return
		}

		id := uuid.NewString()
		rec[types.AttrID] = id
		log.Info("creating record",
			zap.String("collection", res.Collection.Name),
			zap.String("id", id))

		if err := store.PutItem(r.Context(), res.Collection, rec); err != nil {
			log.Error("error creating record",
				zap.String("collection", res.Collection.Name),
				zap.String("id", id),
				zap.Error(err))
			response.WriteText(w, http.StatusInternalServerError, "Failed to add "+res.lower()+".")
			return
		}

		response.WriteText(w, http.StatusCreated, res.Noun+" added.")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/admin/{resource}/{id}
// Replaces the whole record with the body plus the path id. Attributes
// missing from the body are gone afterwards.
//
// Responses: 200 "<Noun> updated.", 400 malformed JSON, 500 store failure.
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage, res Resource, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		rec, ok := decodeRecord(w, r)
		if !ok {
			return
		}

		rec[types.AttrID] = id
		log.Info("updating record",
			zap.String("collection", res.Collection.Name),
			zap.String("id", id))

		if err := store.PutItem(r.Context(), res.Collection, rec); err != nil {
			log.Error("error updating record",
				zap.String("collection", res.Collection.Name),
				zap.String("id", id),
				zap.Error(err))
			response.WriteText(w, http.StatusInternalServerError, "Failed to update "+res.lower()+".")
			return
		}

		response.WriteText(w, http.StatusOK, res.Noun+" updated.")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/admin/{resource}/{id}
// Succeeds whether or not the record existed.
//
// Responses: 200 "<Noun> deleted.", 500 store failure.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage, res Resource, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log.Info("deleting record",
			zap.String("collection", res.Collection.Name),
			zap.String("id", id))

		if err := store.DeleteItem(r.Context(), res.Collection, id); err != nil {
			log.Error("error deleting record",
				zap.String("collection", res.Collection.Name),
				zap.String("id", id),
				zap.Error(err))
			response.WriteText(w, http.StatusInternalServerError, "Failed to delete "+res.lower()+".")
			return
		}

		response.WriteText(w, http.StatusOK, res.Noun+" deleted.")
	}
}

// decodeRecord reads a JSON object body. An empty body (or a JSON null)
// counts as an empty record. On failure it has already written the 400.
func decodeRecord(w http.ResponseWriter, r *http.Request) (types.Record, bool) {
	var rec types.Record
	err := request.DecodeJSON(r, &rec)
	if err != nil && !errors.Is(err, request.ErrEmptyBody) {
		response.WriteText(w, http.StatusBadRequest, response.MsgInvalidBody)
		return nil, false
	}
	if rec == nil {
		rec = types.Record{}
	}
	return rec, true
}
