// Package eventlog is the thread log store (C2): one append-only
// journal file per thread plus a threads index, both durable across
// restarts, with archival rotation for long-lived threads.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agent-bridge/bridge/internal/event"
	"github.com/agent-bridge/bridge/internal/id"
	"github.com/agent-bridge/bridge/internal/metrics"
	"github.com/agent-bridge/bridge/internal/sanitize"
	"github.com/agent-bridge/bridge/internal/timefmt"
)

// Store owns every thread's journal file and the shared threads index
// under dataDir. Appends are serialized per thread; reads re-open and
// scan the file, tolerating a concurrent writer because each event is
// a single write-ordered line.
type Store struct {
	dir string
	idx *index

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Open loads (or initializes) the store rooted at dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, "threads"), 0o750); err != nil {
		return nil, fmt.Errorf("create threads dir: %w", err)
	}
	idx, err := loadIndex(filepath.Join(dataDir, "index.json"))
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	metrics.ActiveThreads.Set(float64(len(idx.list())))
	return &Store{dir: dataDir, idx: idx, locks: map[string]*sync.Mutex{}}, nil
}

func (s *Store) journalPath(threadID string) string {
	return filepath.Join(s.dir, "threads", threadID+".jsonl")
}

func (s *Store) lockFor(threadID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[threadID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[threadID] = l
	}
	return l
}

// ListThreads returns every known thread's metadata.
func (s *Store) ListThreads() []ThreadMeta {
	return s.idx.list()
}

// ThreadMetaByID returns a single thread's metadata.
func (s *Store) ThreadMetaByID(id string) (ThreadMeta, bool) {
	return s.idx.get(id)
}

// CreateThread creates a new thread: writes a thread.created event
// and registers it in the index.
func (s *Store) CreateThread(name, from string) (ThreadMeta, error) {
	threadID := id.New()
	now := timefmt.Format(time.Now())
	if name == "" {
		name = threadID
	}
	if from == "" {
		from = event.ParticipantUser
	}

	ev := &event.Event{
		Type: event.TypeThreadCreated,
		From: from,
		To:   event.ParticipantAll,
	}
	ev.SetContentString(name)

	if _, err := s.Append(threadID, ev); err != nil {
		return ThreadMeta{}, err
	}

	meta := ThreadMeta{ID: threadID, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.idx.upsert(meta); err != nil {
		return ThreadMeta{}, fmt.Errorf("update index: %w", err)
	}
	metrics.ActiveThreads.Set(float64(len(s.idx.list())))
	return meta, nil
}

// EnsureThread returns threadID's metadata, creating it with a
// thread.created event under that exact id if it does not yet exist.
// Used by callers that need a well-known, stable thread id rather
// than one minted by CreateThread.
func (s *Store) EnsureThread(threadID, name string) (ThreadMeta, error) {
	if meta, ok := s.idx.get(threadID); ok {
		return meta, nil
	}
	now := timefmt.Format(time.Now())
	if name == "" {
		name = threadID
	}

	ev := &event.Event{
		Type: event.TypeThreadCreated,
		From: event.ParticipantUser,
		To:   event.ParticipantAll,
	}
	ev.SetContentString(name)

	if _, err := s.Append(threadID, ev); err != nil {
		return ThreadMeta{}, err
	}

	meta := ThreadMeta{ID: threadID, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.idx.upsert(meta); err != nil {
		return ThreadMeta{}, fmt.Errorf("update index: %w", err)
	}
	metrics.ActiveThreads.Set(float64(len(s.idx.list())))
	return meta, nil
}

// RenameThread writes a thread.renamed event and updates the index's
// display name.
func (s *Store) RenameThread(threadID, newName, from string) (*event.Event, error) {
	meta, ok := s.idx.get(threadID)
	if !ok {
		return nil, fmt.Errorf("thread %q not found", threadID)
	}
	if from == "" {
		from = event.ParticipantUser
	}

	ev := &event.Event{
		Type:   event.TypeThreadRenamed,
		From:   from,
		To:     event.ParticipantAll,
		Thread: threadID,
	}
	ev.SetContentString(newName)

	appended, err := s.Append(threadID, ev)
	if err != nil {
		return nil, err
	}

	meta.Name = newName
	meta.UpdatedAt = appended.TS
	if err := s.idx.upsert(meta); err != nil {
		return nil, fmt.Errorf("update index: %w", err)
	}
	return appended, nil
}

// Append stamps ev with id/ts/thread, sanitizes message content, and
// writes one JSON line to the thread's journal. Durable and ordered,
// but not fsynced per write. Once the write lands, the active segment
// is rotated to zstd-compressed archive if it has grown past
// RotateThreshold — Rotate takes its own per-thread lock, so it runs
// after this one is released rather than nested inside it.
func (s *Store) Append(threadID string, ev *event.Event) (*event.Event, error) {
	appended, err := s.appendLocked(threadID, ev)
	if err != nil {
		return nil, err
	}

	if err := s.Rotate(threadID); err != nil {
		slog.Error("rotate journal failed", "thread", threadID, "error", err)
	}

	return appended, nil
}

func (s *Store) appendLocked(threadID string, ev *event.Event) (*event.Event, error) {
	lock := s.lockFor(threadID)
	lock.Lock()
	defer lock.Unlock()

	ev.ID = id.New()
	ev.Thread = threadID
	ev.TS = timefmt.Format(time.Now())

	if ev.Type == event.TypeMessage {
		ev.SetContentString(sanitize.Content(ev.ContentString()))
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	f, err := os.OpenFile(s.journalPath(threadID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("write event: %w", err)
	}

	metrics.EventsAppendedTotal.WithLabelValues(ev.Type).Inc()

	if meta, ok := s.idx.get(threadID); ok && ev.Type != event.TypeThreadCreated {
		meta.UpdatedAt = ev.TS
		_ = s.idx.upsert(meta)
	}

	return ev, nil
}

// ReadSince returns every event in threadID with ts strictly greater
// than since. An empty since returns the full log. Readers take no
// lock: the journal is append-only, so a concurrent writer can only
// ever extend the file past whatever has already been scanned.
func (s *Store) ReadSince(threadID, since string) ([]*event.Event, error) {
	f, err := os.Open(s.journalPath(threadID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var out []*event.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev event.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue // a torn trailing write; skip rather than fail the whole read
		}
		if since != "" && ev.TS <= since {
			continue
		}
		e := ev
		out = append(out, &e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return out, nil
}

// ReadAll returns the full event list for threadID, the shape both
// the admission path and the coordinator's reducer need.
func (s *Store) ReadAll(threadID string) ([]*event.Event, error) {
	return s.ReadSince(threadID, "")
}
