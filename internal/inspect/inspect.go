// Package inspect exposes the engine's dependency graph and live activity
// over HTTP for debugging. Mount the handler on a dev-only port:
//
//	srv := inspect.NewServer()
//	defer vireo.Observe(srv)()
//	http.ListenAndServe("localhost:6300", srv.Handler())
package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vireo-dev/vireo/pkg/vireo"
)

// EventType identifies a streamed engine event.
type EventType string

const (
	EventFlushStarted EventType = "flush_started"
	EventFlushEnded   EventType = "flush_ended"
	EventEffectRan    EventType = "effect"
	EventTriggered    EventType = "trigger"
)

// Event is sent to inspector clients via WebSocket.
type Event struct {
	Type       EventType `json:"type"`
	Queued     int       `json:"queued,omitempty"`
	Ran        int       `json:"ran,omitempty"`
	DurationUS int64     `json:"duration_us,omitempty"`
	EffectID   uint64    `json:"effect_id,omitempty"`
	Target     uint64    `json:"target,omitempty"`
	Key        string    `json:"key,omitempty"`
	Notified   int       `json:"notified,omitempty"`
}

// Server streams engine events to WebSocket clients and serves dependency
// graph snapshots. It implements vireo.Observer; attach it with vireo.Observe.
type Server struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

// NewServer creates an inspector server.
func NewServer() *Server {
	return &Server{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Dev tool, bind it to localhost
			},
		},
	}
}

// Handler returns the inspector's HTTP routes:
//
//	GET /graph   dependency graph snapshot as JSON
//	GET /events  WebSocket stream of engine events
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/graph", s.handleGraph)
	r.Get("/events", s.handleEvents)
	return r
}

func (s *Server) handleGraph(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(vireo.SnapshotGraph()); err != nil {
		slog.Debug("inspect: graph encode failed", "error", err)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	// Keep connection alive until client disconnects
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all client connections.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

func (s *Server) broadcast(ev Event) {
	s.mu.RLock()
	if len(s.clients) == 0 {
		s.mu.RUnlock()
		return
	}
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.mu.Lock()
			delete(s.clients, client)
			s.mu.Unlock()
			client.Close()
		}
	}
}

var _ vireo.Observer = (*Server)(nil)

// FlushStarted implements vireo.Observer.
func (s *Server) FlushStarted(queued int) {
	s.broadcast(Event{Type: EventFlushStarted, Queued: queued})
}

// FlushEnded implements vireo.Observer.
func (s *Server) FlushEnded(ran int, took time.Duration) {
	s.broadcast(Event{Type: EventFlushEnded, Ran: ran, DurationUS: took.Microseconds()})
}

// EffectRan implements vireo.Observer.
func (s *Server) EffectRan(id uint64, took time.Duration) {
	s.broadcast(Event{Type: EventEffectRan, EffectID: id, DurationUS: took.Microseconds()})
}

// Triggered implements vireo.Observer.
func (s *Server) Triggered(target uint64, key any, notified int) {
	s.broadcast(Event{Type: EventTriggered, Target: target, Key: vireo.FormatKey(key), Notified: notified})
}
