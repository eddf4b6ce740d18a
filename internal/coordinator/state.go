package coordinator

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/agent-bridge/bridge/internal/atomicfile"
)

// processedCap is the per-thread bound on dispatched-event tracking
// before a bulk clear. The persisted cursor prevents re-pickup across
// restarts in "resume" mode, and "end" mode never back-processes
// history, so the bulk clear cannot cause an in-process re-dispatch;
// see the design notes on this exact tradeoff.
const processedCap = 5000

type threadCursor struct {
	LastTS string `json:"last_ts"`
}

type stateFile struct {
	Threads map[string]threadCursor `json:"threads"`
}

// CursorStore is the coordinator's persisted per-thread high-water
// mark, atomically replaced on every save.
type CursorStore struct {
	path string

	mu   sync.Mutex
	data stateFile
}

// NewCursorStore returns an empty cursor store that will persist to
// path, ignoring any existing file there. Used for startup_mode "end":
// every thread begins at its tail, discarding any prior run's cursor.
func NewCursorStore(path string) *CursorStore {
	return &CursorStore{path: path, data: stateFile{Threads: map[string]threadCursor{}}}
}

// LoadCursorStore reads path if present, or starts empty.
func LoadCursorStore(path string) (*CursorStore, error) {
	cs := &CursorStore{path: path, data: stateFile{Threads: map[string]threadCursor{}}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cs, nil
		}
		return nil, fmt.Errorf("read cursor state: %w", err)
	}
	if len(raw) == 0 {
		return cs, nil
	}
	if err := json.Unmarshal(raw, &cs.data); err != nil {
		return nil, fmt.Errorf("parse cursor state: %w", err)
	}
	if cs.data.Threads == nil {
		cs.data.Threads = map[string]threadCursor{}
	}
	return cs, nil
}

// Get returns the last observed ts for thread, or "" if none.
func (cs *CursorStore) Get(thread string) string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.data.Threads[thread].LastTS
}

// Has reports whether thread has ever been seen. Get returns "" both
// for a thread never seen and for one touched while it had no events;
// Has tells the two apart.
func (cs *CursorStore) Has(thread string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	_, ok := cs.data.Threads[thread]
	return ok
}

// Touch records that thread has been observed even if it has no
// events yet, without moving an existing cursor backward.
func (cs *CursorStore) Touch(thread string) error {
	cs.mu.Lock()
	if _, ok := cs.data.Threads[thread]; ok {
		cs.mu.Unlock()
		return nil
	}
	cs.data.Threads[thread] = threadCursor{}
	raw, err := json.Marshal(cs.data)
	cs.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal cursor state: %w", err)
	}
	if err := atomicfile.Write(cs.path, raw, 0o640); err != nil {
		return fmt.Errorf("write cursor state: %w", err)
	}
	return nil
}

// Advance sets thread's cursor to ts and persists the whole state
// file atomically. No-op if ts does not advance the stored cursor.
func (cs *CursorStore) Advance(thread, ts string) error {
	cs.mu.Lock()
	cur := cs.data.Threads[thread]
	if ts <= cur.LastTS {
		cs.mu.Unlock()
		return nil
	}
	cs.data.Threads[thread] = threadCursor{LastTS: ts}
	raw, err := json.Marshal(cs.data)
	cs.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal cursor state: %w", err)
	}
	if err := atomicfile.Write(cs.path, raw, 0o640); err != nil {
		return fmt.Errorf("write cursor state: %w", err)
	}
	return nil
}

// ProcessedSet tracks, per thread, which event ids have already been
// dispatched to an agent in this process, bounded to processedCap
// entries with a bulk clear (not LRU eviction) past that bound.
type ProcessedSet struct {
	mu        sync.Mutex
	perThread map[string]map[string]struct{}
}

// NewProcessedSet returns an empty tracker.
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{perThread: map[string]map[string]struct{}{}}
}

// Seen reports whether eventID was already marked processed for
// thread.
func (p *ProcessedSet) Seen(thread, eventID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.perThread[thread][eventID]
	return ok
}

// Mark records eventID as processed for thread, bulk-clearing the
// thread's set first if it has reached processedCap.
func (p *ProcessedSet) Mark(thread, eventID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.perThread[thread]
	if !ok || len(set) >= processedCap {
		set = map[string]struct{}{}
		p.perThread[thread] = set
	}
	set[eventID] = struct{}{}
}
