// Package web provides the HTTP server for the upload-and-compare UI:
// two tables in, a rendered delta report out, plus an expectation
// check endpoint.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxUploadBytes bounds one multipart request body.
const maxUploadBytes = 64 << 20

// Server is the HTTP front end over the delta and expect engines.
type Server struct {
	router *chi.Mux
}

// NewServer creates a Server with middleware and routes configured.
func NewServer() *Server {
	s := &Server{router: chi.NewRouter()}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Post("/diff", s.handleDiff)
	s.router.Post("/check", s.handleCheck)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
