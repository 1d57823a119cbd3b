// Package server provides the CV API: the REST surface the editor and the
// rendering pipeline talk to.
//
// Routes follow the editor's expectations: the full graph under GET /cv,
// node queries under /cv/nodes, type-specific create endpoints, and a
// generic update/delete pair. Edits require a bearer session issued to a
// whitelisted email; anonymous reads never see draft nodes.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fschmidt/virtualcv/pkg/session"
	"github.com/fschmidt/virtualcv/pkg/store"
)

// Options configures the API server.
type Options struct {
	// Store is the persistence backend. Required.
	Store store.Store

	// Sessions stores editor sessions. Required for edit endpoints.
	Sessions session.Store

	// Whitelist is the set of emails allowed to edit. An empty whitelist
	// disables editing entirely.
	Whitelist session.Whitelist

	// States issues and consumes single-use login state tokens. Defaults to
	// an in-memory store; use Redis when sessions are shared.
	States session.StateStore

	// SessionTTL bounds issued sessions. Zero means session.DefaultTTL.
	SessionTTL time.Duration

	// AllowedOrigins configures CORS for browser-based editors.
	AllowedOrigins []string

	// Logger receives request logs. Defaults to log.Default().
	Logger *log.Logger
}

// Server is the CV API server.
type Server struct {
	store      store.Store
	sessions   session.Store
	whitelist  session.Whitelist
	states     session.StateStore
	sessionTTL time.Duration
	logger     *log.Logger
	origins    []string
}

// New creates a Server from options.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ttl := opts.SessionTTL
	if ttl == 0 {
		ttl = session.DefaultTTL
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	states := opts.States
	if states == nil {
		states = session.NewMemoryStateStore()
	}
	return &Server{
		store:      opts.Store,
		sessions:   opts.Sessions,
		whitelist:  opts.Whitelist,
		states:     states,
		sessionTTL: ttl,
		logger:     logger,
		origins:    origins,
	}
}

// Router configures all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	// Auth endpoints. Login is a two-step flow: fetch a single-use state
	// token, then exchange it together with a whitelisted email.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/state", s.handleLoginState)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.requireSession).Get("/me", s.handleMe)
	})

	// CV endpoints. Reads are public (drafts filtered); edits need a session.
	r.Route("/cv", func(r chi.Router) {
		r.Use(s.attachSession)

		r.Get("/", s.handleGetData)
		r.Get("/search", s.handleSearch)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/{id}", s.handleGetNode)
			r.Get("/{id}/children", s.handleGetChildren)

			// Type-specific creates
			r.Group(func(r chi.Router) {
				r.Use(s.requireSession)
				r.Post("/profile", s.createHandler("PROFILE"))
				r.Post("/category", s.createHandler("CATEGORY"))
				r.Post("/item", s.createHandler("ITEM"))
				r.Post("/skill-group", s.createHandler("SKILL_GROUP"))
				r.Post("/skill", s.createHandler("SKILL"))

				r.Put("/{id}", s.handleUpdateNode)
				r.Delete("/{id}", s.handleDeleteNode)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
