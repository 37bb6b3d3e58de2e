// Package router assembles the chi route table.
//
// Route table:
//
//	GET    /api/{team|members|events|gallery}        list (public)
//	POST   /api/register                             event registration (public)
//	POST   /api/admin/signup                         create non-admin user (public)
//	POST   /api/admin/login                          admin login (public)
//	POST   /api/admin/{team|members|events|gallery}  create   (admin)
//	PUT    /api/admin/{...}/{id}                     replace  (admin)
//	DELETE /api/admin/{...}/{id}                     delete   (admin)
//	GET    /api/admin/registrations                  list     (admin)
//	GET    /api/admin/users                          list     (admin)
//	PUT    /api/admin/users/{username}               set isAdmin (admin)
//	GET    /*                                        static files, / → index.html
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/aanand-mishra/chapter-api/internal/auth"
	"github.com/aanand-mishra/chapter-api/internal/http/handlers/account"
	"github.com/aanand-mishra/chapter-api/internal/http/handlers/content"
	"github.com/aanand-mishra/chapter-api/internal/http/handlers/registration"
	"github.com/aanand-mishra/chapter-api/internal/http/middleware"
	"github.com/aanand-mishra/chapter-api/internal/storage"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// Deps is everything the routes need.
type Deps struct {
	Store    storage.Storage
	Catalog  storage.Catalog
	Verifier auth.Verifier
	Issuer   auth.Issuer
	Log      *zap.Logger

	// StaticDir is served below "/"; empty disables static serving.
	StaticDir string

	// AllowedOrigins enables CORS for these origins; empty disables it.
	AllowedOrigins []string
}

// New returns the application's root handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestSize(MaxBodyBytes))

	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	resources := content.Resources(d.Catalog)
	registrations := content.Resource{Path: "registrations", Collection: d.Catalog.Registrations, Noun: "Registration"}

	r.Route("/api", func(r chi.Router) {
		for _, res := range resources {
			r.Get("/"+res.Path, content.GetList(d.Store, res, d.Log))
		}
		r.Post("/register", registration.Register(d.Store, d.Catalog.Registrations, d.Log))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/signup", account.Signup(d.Store, d.Catalog.Users, d.Log))
			r.Post("/login", account.Login(d.Store, d.Catalog.Users, d.Issuer, d.Log))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(d.Verifier, d.Log))

				for _, res := range resources {
					r.Post("/"+res.Path, content.New(d.Store, res, d.Log))
					r.Put("/"+res.Path+"/{id}", content.Update(d.Store, res, d.Log))
					r.Delete("/"+res.Path+"/{id}", content.Delete(d.Store, res, d.Log))
				}

				r.Get("/registrations", content.GetList(d.Store, registrations, d.Log))
				r.Get("/users", account.GetList(d.Store, d.Catalog.Users, d.Log))
				r.Put("/users/{username}", account.SetAdmin(d.Store, d.Catalog.Users, d.Log))
			})
		})
	})

	if d.StaticDir != "" {
		// http.FileServer answers "/" with index.html from the directory.
		r.Handle("/*", http.FileServer(http.Dir(d.StaticDir)))
	}

	return r
}
