package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const requestTimeout = 15 * time.Second

type Server struct {
	mux    *chi.Mux
	apiKey string
}

type ServerOption func(*Server)

// WithAPIKey guards the /v1 routes with an X-API-Key check. Health and
// metrics stay open.
func WithAPIKey(key string) ServerOption { return func(s *Server) { s.apiKey = key } }

func New(opts ...ServerOption) *Server {
	s := &Server{mux: chi.NewRouter()}
	for _, o := range opts {
		o(s)
	}

	// middlewares must be registered before any route
	s.mux.Use(chimw.RealIP)
	s.mux.Use(chimw.RequestID)
	s.mux.Use(chimw.Recoverer)
	s.mux.Use(chimw.Timeout(requestTimeout))
	s.mux.Use(Metrics)
	s.mux.Use(Logger(log.Logger))

	return s
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches an extra handler such as /metrics.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
