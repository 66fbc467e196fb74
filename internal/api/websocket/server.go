// Package websocket pushes bracket snapshots to subscribers whenever a
// refresh cycle changes anything.
package websocket

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the feed is public and read-only
	},
}

// Server serves the live bracket feed.
type Server struct {
	server *http.Server
	hub    *Hub
	log    *zap.Logger
}

// NewServer creates a websocket server.
func NewServer(log *zap.Logger) *Server {
	return &Server{
		hub: NewHub(log),
		log: log,
	}
}

// Start runs the hub and listens for subscribers.
func (s *Server) Start(port string) error {
	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/bracket", s.handleBracket)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}
	s.log.Info("websocket server listening", zap.String("port", port))
	return s.server.ListenAndServe()
}

// handleBracket upgrades a connection and subscribes it to snapshots.
func (s *Server) handleBracket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:   uuid.New().String(),
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns websocket server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// Broadcast sends a snapshot to all connected clients. Implements the
// engine's Broadcaster.
func (s *Server) Broadcast(data []byte) {
	s.hub.Broadcast(data)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
