// Package api exposes the marketplace over JSON HTTP for the mini app.
package api

import (
	"net/http"

	"marketbot/config"
	"marketbot/pkg/logger"
	"marketbot/service"
	"marketbot/storage"
)

type Server struct {
	mux *http.ServeMux
	svc service.IServiceManager
	stg storage.IStorage
	cfg config.Config
	log logger.ILogger
}

func NewServer(svc service.IServiceManager, stg storage.IStorage, cfg config.Config, log logger.ILogger) *Server {
	s := &Server{
		mux: http.NewServeMux(),
		svc: svc,
		stg: stg,
		cfg: cfg,
		log: log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/auth", s.handleAuth)

	s.mux.HandleFunc("POST /api/listings", s.requireAuth(s.handleCreateListing))
	s.mux.HandleFunc("GET /api/listings/{id}", s.optionalAuth(s.handleGetListing))
	s.mux.HandleFunc("DELETE /api/listings/{id}", s.requireAuth(s.handleDeleteListing))
	s.mux.HandleFunc("GET /api/my-listings", s.requireAuth(s.handleMyListings))

	s.mux.HandleFunc("POST /api/listings/{id}/publish", s.requireAuth(s.handlePublishListing))
	s.mux.HandleFunc("POST /api/listings/{id}/close", s.requireAuth(s.handleCloseListing))
	s.mux.HandleFunc("POST /api/listings/{id}/bid", s.requireAuth(s.handlePlaceBid))
	s.mux.HandleFunc("POST /api/listings/{id}/photos", s.requireAuth(s.handleUploadPhotos))

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
