package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mark3labs/mcp-go/mcp"

	"mcpi/internal/config"
	"mcpi/internal/plugin"
	"mcpi/internal/protocol"
	"mcpi/pkg/logging"
)

// Server serves MCPI sessions, discovery and admin endpoints on one listener.
type Server struct {
	cfg        config.ServerConfig
	registry   *plugin.Registry
	serverInfo mcp.Implementation
	upgrader   websocket.Upgrader
	mux        *http.ServeMux

	mu         sync.Mutex
	httpServer *http.Server

	startTime     time.Time
	activeConns   atomic.Int64
	totalRequests atomic.Uint64
}

// NewServer wires the HTTP routes for the given configuration and registry.
func NewServer(cfg config.ServerConfig, registry *plugin.Registry, version string) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		serverInfo: mcp.Implementation{
			Name:    cfg.Provider.Name,
			Version: version,
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux:       http.NewServeMux(),
		startTime: time.Now(),
	}

	s.mux.HandleFunc(cfg.Server.SessionPath, s.handleSession)
	s.mux.HandleFunc(cfg.Server.DiscoveryPath, s.handleDiscovery)
	s.mux.HandleFunc("/api/admin/stats", s.handleAdminStats)
	s.mux.HandleFunc("/api/admin/plugins", s.handleAdminPlugins)
	return s
}

// Handler exposes the route table, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.mux }

// Start listens and serves until Stop is called or the context is cancelled.
// It blocks for the lifetime of the server.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	s.httpServer = httpServer
	s.mu.Unlock()

	logging.Info("Server", "Listening on %s (session %s, discovery %s)",
		addr, s.cfg.Server.SessionPath, s.cfg.Server.DiscoveryPath)

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts down the listener, waiting up to five seconds for in-flight
// requests. Open WebSocket connections are closed by their own goroutines
// when their reads fail.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if httpServer == nil {
		return fmt.Errorf("server not started")
	}

	logging.Info("Server", "Stopping MCPI server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	httpServer.SetKeepAlivesEnabled(false)
	return httpServer.Shutdown(shutdownCtx)
}

// handleSession upgrades the connection and runs its read loop to completion.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Server", "WebSocket upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}

	id := uuid.NewString()[:8]
	sess := protocol.NewSession(id, s.registry, s.cfg.Provider, s.serverInfo)
	s.activeConns.Add(1)
	logging.Info("Server", "Session %s opened from %s", id, r.RemoteAddr)

	defer func() {
		sess.Close()
		conn.Close()
		s.activeConns.Add(-1)
		logging.Info("Server", "Session %s closed", id)
	}()

	idle := s.cfg.Server.IdleTimeout
	for {
		if idle > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(idle)); err != nil {
				return
			}
		}
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("Server", "Session %s read error: %v", id, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		s.totalRequests.Add(1)
		resp := sess.HandleMessage(raw)
		if resp == nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, resp); err != nil {
			logging.Debug("Server", "Session %s write error: %v", id, err)
			return
		}
	}
}
