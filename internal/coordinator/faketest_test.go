package coordinator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/agent-bridge/bridge/internal/event"
	"github.com/agent-bridge/bridge/internal/eventlog"
)

// fakeBridge is a minimal in-memory stand-in for the bridge server's
// JSON API, enough to drive the coordinator's poll loop, dispatch
// gate, and presence posting end to end without a real eventlog.Store.
type fakeBridge struct {
	mu       sync.Mutex
	threads  []eventlog.ThreadMeta
	events   map[string][]*event.Event
	presence map[string]map[string]string // thread -> participant -> state

	posts []postPresenceCall
}

type postPresenceCall struct {
	Thread, From, State string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		events:   map[string][]*event.Event{},
		presence: map[string]map[string]string{},
	}
}

func (f *fakeBridge) addThread(id string, events ...*event.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads = append(f.threads, eventlog.ThreadMeta{ID: id, Name: id})
	f.events[id] = append(f.events[id], events...)
}

func (f *fakeBridge) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(f.handle))
}

func (f *fakeBridge) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/threads":
		_ = json.NewEncoder(w).Encode(map[string]any{"threads": f.threads})

	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/events"):
		thread := strings.Split(strings.TrimPrefix(r.URL.Path, "/threads/"), "/")[0]
		_ = json.NewEncoder(w).Encode(map[string]any{"events": f.events[thread]})

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/events"):
		thread := strings.Split(strings.TrimPrefix(r.URL.Path, "/threads/"), "/")[0]
		var ev event.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		ev.ID = "posted"
		ev.Thread = thread
		f.events[thread] = append(f.events[thread], &ev)
		_ = json.NewEncoder(w).Encode(map[string]any{"event": ev})

	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/presence"):
		_ = json.NewEncoder(w).Encode(map[string]any{"participants": []any{}})

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/presence"):
		thread := strings.Split(strings.TrimPrefix(r.URL.Path, "/threads/"), "/")[0]
		var body postPresenceBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		if f.presence[thread] == nil {
			f.presence[thread] = map[string]string{}
		}
		f.presence[thread][body.From] = body.State
		f.posts = append(f.posts, postPresenceCall{Thread: thread, From: body.From, State: body.State})
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
