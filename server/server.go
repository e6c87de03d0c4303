package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-idp-core/auth"
	"github.com/jrsteele09/go-idp-core/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Server is the HTTP surface over the authorization service. Handlers
// only translate requests and Results; all flow logic lives in auth.
type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	auth   *auth.Service
	log    zerolog.Logger
}

func New(config config.Config, authService *auth.Service, log zerolog.Logger) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[Server New] missing authorization service")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		config: config,
		auth:   authService,
		log:    log,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			s.log.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}
