package bridgeapi

import (
	"encoding/json"
	"net/http"

	"github.com/agent-bridge/bridge/internal/control"
	"github.com/agent-bridge/bridge/internal/event"
)

// legacyThreadID is the single well-known thread the flat /message,
// /messages and /latest endpoints operate on. Retained as a thin shim
// over the same event store for parity with the predecessor's flat
// surface; outside the tested invariants of §8.
const legacyThreadID = "legacy"

// registerLegacyRoutes wires the pre-thread flat message surface onto
// mux. Every handler here works on the same store as the thread-scoped
// handlers, pinned to legacyThreadID; the POST handler carries its own
// copy of the mute/pause admission check.
func registerLegacyRoutes(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("POST /message", s.handleLegacyPostMessage)
	mux.HandleFunc("GET /messages", s.handleLegacyGetMessages)
	mux.HandleFunc("GET /latest", s.handleLegacyGetLatest)
}

type legacyMessageRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Content string `json:"content"`
}

func (s *Server) handleLegacyPostMessage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.EnsureThread(legacyThreadID, "legacy"); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	var req legacyMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if !event.TrimmedNonEmpty(req.From) {
		writeValidationError(w, "from is required")
		return
	}
	if !event.TrimmedNonEmpty(req.Content) {
		writeValidationError(w, "content is required")
		return
	}
	to := req.To
	if to == "" {
		to = event.ParticipantAll
	}

	ev := &event.Event{Type: event.TypeMessage, From: req.From, To: to}
	ev.SetContentString(req.Content)

	if ev.From != event.ParticipantUser {
		prior, err := s.store.ReadAll(legacyThreadID)
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		state := control.Reduce(prior)
		if state.Paused {
			writeAdmissionError(w, "thread_paused", "the thread is paused", legacyThreadID, ev.From)
			return
		}
		if state.IsMuted(ev.From) {
			writeAdmissionError(w, "participant_muted", "the participant is muted", legacyThreadID, ev.From)
			return
		}
	}

	appended, err := s.store.Append(legacyThreadID, ev)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"received": true, "event": appended})
}

func (s *Server) handleLegacyGetMessages(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ReadSince(legacyThreadID, r.URL.Query().Get("since"))
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": events, "count": len(events)})
}

func (s *Server) handleLegacyGetLatest(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ReadAll(legacyThreadID)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == event.TypeMessage {
			writeJSON(w, http.StatusOK, map[string]any{"message": events[i]})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": nil})
}
