// Package bridgeapi is the event API + SSE HTTP surface (C5): thread
// listing/creation, event append/read, live SSE streaming, thread
// state, and presence.
package bridgeapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agent-bridge/bridge/internal/eventlog"
	"github.com/agent-bridge/bridge/internal/logging"
	"github.com/agent-bridge/bridge/internal/metrics"
	"github.com/agent-bridge/bridge/internal/presence"
)

// Server is the bridge HTTP server.
type Server struct {
	addr     string
	store    *eventlog.Store
	presence *presence.Registry
	http     *http.Server
}

// NewServer wires the full route table over store and presence.
func NewServer(addr string, store *eventlog.Store, presenceReg *presence.Registry) *Server {
	s := &Server{addr: addr, store: store, presence: presenceReg}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /threads", s.handleListThreads)
	mux.HandleFunc("POST /threads", s.handleCreateThread)
	mux.HandleFunc("GET /threads/{id}/events", s.handleReadEvents)
	mux.HandleFunc("POST /threads/{id}/events", s.handleAppendEvent)
	mux.HandleFunc("GET /threads/{id}/events/stream", s.handleStream)
	mux.HandleFunc("GET /threads/{id}/state", s.handleState)
	mux.HandleFunc("GET /threads/{id}/presence", s.handleGetPresence)
	mux.HandleFunc("POST /threads/{id}/presence", s.handlePostPresence)

	registerLegacyRoutes(mux, s)

	mux.Handle("/metrics", promhttp.Handler())

	handler := logging.HTTPMiddleware(metrics.HTTPMiddleware(mux))

	s.http = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Serve blocks, listening on addr, until ctx is cancelled, then
// performs a graceful shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		slog.Info("bridge server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
		close(shutdownDone)
	}()

	if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	<-shutdownDone
	return nil
}
