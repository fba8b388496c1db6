package api

import (
	"log/slog"
	"net/http"

	"github.com/wconley/cratedig/internal/api/middleware"
	"github.com/wconley/cratedig/internal/ingest"
	"github.com/wconley/cratedig/internal/store"
)

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	IngestService *ingest.Service
	Store         *store.Store
	Logger        *slog.Logger
}

// Router sets up all HTTP routes for the application.
type Router struct {
	ingestService *ingest.Service
	store         *store.Store
	logger        *slog.Logger
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		ingestService: deps.IngestService,
		store:         deps.Store,
		logger:        deps.Logger,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", r.handleHealth)

	// Catalog browsing
	mux.HandleFunc("GET /api/v1/genres", r.handleListGenres)
	mux.HandleFunc("GET /api/v1/artists", r.handleListArtists)
	mux.HandleFunc("GET /api/v1/artists/{id}", r.handleGetArtist)
	mux.HandleFunc("GET /api/v1/albums", r.handleListAlbums)
	mux.HandleFunc("GET /api/v1/albums/{id}", r.handleGetAlbum)
	mux.HandleFunc("GET /api/v1/songs", r.handleListSongs)
	mux.HandleFunc("GET /api/v1/songs/{id}", r.handleGetSong)

	// Ingestion workflows
	mux.HandleFunc("POST /api/v1/fetch/artist", r.handleFetchArtist)
	mux.HandleFunc("POST /api/v1/fetch/track", r.handleFetchTrack)
	mux.HandleFunc("POST /api/v1/fetch/discography", r.handleFetchDiscography)
	mux.HandleFunc("POST /api/v1/fetch/catalog", r.handleFetchCatalog)

	return middleware.Logging(r.logger)(mux)
}
