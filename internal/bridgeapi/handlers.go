package bridgeapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/agent-bridge/bridge/internal/control"
	"github.com/agent-bridge/bridge/internal/event"
	"github.com/agent-bridge/bridge/internal/metrics"
	"github.com/agent-bridge/bridge/internal/presence"
)

const presenceTTLSeconds = int(presence.TTL / time.Second)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeValidationError(w http.ResponseWriter, message string) {
	metrics.EventsRejectedTotal.WithLabelValues("validation").Inc()
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

type admissionError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Thread      string `json:"thread"`
	Participant string `json:"participant"`
}

func writeAdmissionError(w http.ResponseWriter, code, message, thread, participant string) {
	metrics.EventsRejectedTotal.WithLabelValues(code).Inc()
	writeJSON(w, http.StatusConflict, map[string]admissionError{
		"error": {Code: code, Message: message, Thread: thread, Participant: participant},
	})
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"threads": s.store.ListThreads()})
}

type createThreadRequest struct {
	Name string `json:"name"`
	From string `json:"from"`
}

func (s *Server) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body is valid: all fields default
	}

	meta, err := s.store.CreateThread(req.Name, req.From)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": meta.ID, "name": meta.Name})
}

func (s *Server) handleReadEvents(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	since := r.URL.Query().Get("since")

	events, err := s.store.ReadSince(threadID, since)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func (s *Server) handleAppendEvent(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")

	var ev event.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if !event.TrimmedNonEmpty(ev.From) {
		writeValidationError(w, "from is required")
		return
	}
	if ev.Type == "" {
		ev.Type = event.TypeMessage
	}
	if ev.Type == event.TypeMessage && len(ev.Content) == 0 {
		writeValidationError(w, "content is required")
		return
	}
	if ev.To == "" {
		ev.To = event.ParticipantAll
	}

	if ev.Type == event.TypeMessage && ev.From != event.ParticipantUser {
		prior, err := s.store.ReadAll(threadID)
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		state := control.Reduce(prior)
		if state.Paused {
			writeAdmissionError(w, "thread_paused", "the thread is paused", threadID, ev.From)
			return
		}
		if state.IsMuted(ev.From) {
			writeAdmissionError(w, "participant_muted", "the participant is muted", threadID, ev.From)
			return
		}
	}

	appended, err := s.store.Append(threadID, &ev)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"received": true, "event": appended})
}

type threadStateResponse struct {
	Thread string    `json:"thread"`
	State  stateBody `json:"state"`
}

type stateBody struct {
	Paused     bool           `json:"paused"`
	Muted      []string       `json:"muted"`
	Discussion discussionBody `json:"discussion"`
}

type discussionBody struct {
	On                 bool `json:"on"`
	AllowAgentMentions bool `json:"allow_agent_mentions"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	events, err := s.store.ReadAll(threadID)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	st := control.Reduce(events)
	writeJSON(w, http.StatusOK, threadStateResponse{
		Thread: threadID,
		State: stateBody{
			Paused: st.Paused,
			Muted:  st.MutedSorted(),
			Discussion: discussionBody{
				On:                 st.DiscussionOn,
				AllowAgentMentions: st.AllowAgentMentions,
			},
		},
	})
}

func (s *Server) handleGetPresence(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	writeJSON(w, http.StatusOK, map[string]any{
		"thread":       threadID,
		"ttl_seconds":  presenceTTLSeconds,
		"participants": s.presence.Snapshot(threadID),
	})
}

type postPresenceRequest struct {
	From    string         `json:"from"`
	State   string         `json:"state"`
	Details map[string]any `json:"details"`
}

func (s *Server) handlePostPresence(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	var req postPresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if !event.TrimmedNonEmpty(req.From) {
		writeValidationError(w, "from is required")
		return
	}
	s.presence.Set(threadID, req.From, req.State, req.Details)
	writeJSON(w, http.StatusOK, map[string]any{
		"received": true,
		"presence": s.presence.Snapshot(threadID),
	})
}
