package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// Server accepts WebSocket clients and routes their messages to tables
type Server struct {
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	registry    *Registry
	logger      *log.Logger
	mu          sync.RWMutex
}

// NewServer creates a new WebSocket server
func NewServer(registry *Registry, logger *log.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Clients are bots and local tools; no browser origin policy applies
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		registry:    registry,
		logger:      logger.WithPrefix("server"),
	}
}

// Handler returns the HTTP routes served by this server
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/tables", s.handleListTables)
	r.Get("/tables/{id}", s.handleTable)
	r.Get("/tables/{id}/stats", s.handleTableStats)
	r.Get("/ws", s.handleWebSocket)
	return r
}

// Shutdown closes every client connection
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	return ctx.Err()
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.registry)
	s.register(client)
	client.Start()

	go func() {
		<-client.Done()
		s.unregister(client)
	}()
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
}

// unregister forgets a connection and removes its player from their table.
// The table is left outside s.mu because leaving broadcasts through Deliver.
func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	_, ok := s.connections[conn]
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	if !ok {
		return
	}

	playerID, tableID := conn.GetPlayer(), conn.GetTable()
	if playerID != "" && tableID != "" {
		s.logger.Info("Cleaning up disconnected player", "player", playerID, "table", tableID)
		if table, err := s.registry.Table(tableID); err == nil {
			if _, err := table.Leave(context.Background(), playerID); err != nil {
				s.logger.Warn("Failed to remove disconnected player", "player", playerID, "error", err)
			}
		}
	}
	s.logger.Info("Client disconnected", "total", total)
}

// Deliver builds and sends a message to every connection following tableID
func (s *Server) Deliver(tableID string, build func(viewer string) (*Message, error)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.GetTable() != tableID {
			continue
		}
		msg, err := build(conn.GetPlayer())
		if err != nil {
			s.logger.Error("Failed to build message", "table", tableID, "error", err)
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send message to client", "error", err, "player", conn.GetPlayer())
			continue
		}
		count++
	}

	s.logger.Debug("Delivered message to table", "tableId", tableID, "recipients", count)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TableListData{Tables: s.registry.List()})
}

// handleTable returns a spectator view of one table
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	table, err := s.registry.Table(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorData{Code: errorCode(err), Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, GameStateData{TableID: id, State: table.Snapshot("")})
}

func (s *Server) handleTableStats(w http.ResponseWriter, r *http.Request) {
	table, err := s.registry.Table(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorData{Code: errorCode(err), Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, table.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
