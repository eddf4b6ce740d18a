package bridgeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agent-bridge/bridge/internal/metrics"
)

const (
	ssePollInterval = time.Second
	sseKeepAlive    = 15 * time.Second
)

// handleStream serves …/events/stream?since=<ts>. It loops: read
// events past the cursor, emit one SSE "data:" line per event,
// advance the cursor, emit a keep-alive comment after 15s of
// idleness, sleep briefly, repeat. There is no replay window: once
// delivered, an event is never redelivered on this connection.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	cursor := r.URL.Query().Get("since")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeValidationError(w, "streaming not supported")
		return
	}

	if cursor == "" {
		tail, err := s.store.ReadAll(threadID)
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		if len(tail) > 0 {
			cursor = tail[len(tail)-1].TS
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	metrics.SSEStreamsActive.Inc()
	defer metrics.SSEStreamsActive.Dec()

	lastActivity := time.Now()
	ticker := time.NewTicker(ssePollInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			events, err := s.store.ReadSince(threadID, cursor)
			if err != nil {
				return
			}
			if len(events) == 0 {
				if time.Since(lastActivity) >= sseKeepAlive {
					if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
						return
					}
					flusher.Flush()
					lastActivity = time.Now()
				}
				continue
			}
			for _, ev := range events {
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				cursor = ev.TS
			}
			flusher.Flush()
			lastActivity = time.Now()
		}
	}
}
