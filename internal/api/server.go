package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/uidump/internal/config"
	"github.com/dgallion1/uidump/internal/device"
	"github.com/dgallion1/uidump/internal/store"
	"github.com/dgallion1/uidump/internal/uinode"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Capturer takes a live hierarchy dump from a device.
type Capturer interface {
	DumpHierarchy(ctx context.Context) ([]byte, error)
}

// Server is the HTTP API server for uidump.
type Server struct {
	router     chi.Router
	dumps      *store.Store
	resolution uinode.ResolutionProvider
	capturer   Capturer
	stats      *device.Stats
	log        *slog.Logger
	cfg        config.Config
}

// Deps are the collaborators a Server needs. Resolution, Capturer and Stats
// may be nil; the endpoints that need them then answer 503.
type Deps struct {
	Dumps      *store.Store
	Resolution uinode.ResolutionProvider
	Capturer   Capturer
	Stats      *device.Stats
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		dumps:      deps.Dumps,
		resolution: deps.Resolution,
		capturer:   deps.Capturer,
		stats:      deps.Stats,
		log:        log,
		cfg:        cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(AccessLog(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(s.cfg.APIKey, s.log))

		r.Post("/api/dumps", s.handleUpload)
		r.Post("/api/dumps/capture", s.handleCapture)
		r.Get("/api/dumps", s.handleListDumps)

		r.Route("/api/dumps/{dumpID}", func(r chi.Router) {
			r.Get("/", s.handleGetDump)
			r.Delete("/", s.handleDeleteDump)
			r.Get("/at", s.handleNodesAt)
			r.Get("/query", s.handleQuery)
			r.Get("/report", s.handleReport)
			r.Get("/nodes/{nodeID}", s.handleNode)
			r.Get("/nodes/{nodeID}/xpath", s.handleXPath)
			r.Get("/nodes/{nodeID}/position", s.handlePosition)
		})

		r.Get("/api/stats/device", s.handleDeviceStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
