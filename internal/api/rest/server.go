package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/john-heyer/madness/internal/bracket"
	"github.com/john-heyer/madness/internal/scheduler"
)

// Server is the read-only snapshot API over the live bracket.
type Server struct {
	server *http.Server
}

// NewServer builds the router and handlers. Handlers only snapshot the tree
// and metadata; nothing here mutates core state.
func NewServer(port string, tree *bracket.Tree, meta *scheduler.Metadata, log *zap.Logger) *Server {
	handler := NewHandler(tree, meta, log)

	router := mux.NewRouter()
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/bracket", handler.GetBracket).Methods("GET")
	api.HandleFunc("/bracket/text", handler.GetBracketText).Methods("GET")
	api.HandleFunc("/bracket/html", handler.GetBracketHTML).Methods("GET")
	api.HandleFunc("/metadata", handler.GetMetadata).Methods("GET")
	api.HandleFunc("/events/{eventID}", handler.GetEvent).Methods("GET")

	return &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
