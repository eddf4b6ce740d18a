package eventlog

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/agent-bridge/bridge/internal/atomicfile"
)

// ThreadMeta is one row of the threads index.
type ThreadMeta struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type indexFile struct {
	Threads []ThreadMeta `json:"threads"`
}

// index is the in-memory threads directory, persisted to indexPath on
// every mutation via atomic temp+rename.
type index struct {
	mu       sync.Mutex
	path     string
	byID     map[string]int
	threads  []ThreadMeta
}

func loadIndex(path string) (*index, error) {
	idx := &index{path: path, byID: map[string]int{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}

	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	idx.threads = f.Threads
	for i, t := range idx.threads {
		idx.byID[t.ID] = i
	}
	return idx, nil
}

func (idx *index) list() []ThreadMeta {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]ThreadMeta, len(idx.threads))
	copy(out, idx.threads)
	return out
}

func (idx *index) get(id string) (ThreadMeta, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	i, ok := idx.byID[id]
	if !ok {
		return ThreadMeta{}, false
	}
	return idx.threads[i], true
}

// upsert inserts or updates a thread's metadata row and persists the
// index atomically.
func (idx *index) upsert(meta ThreadMeta) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if i, ok := idx.byID[meta.ID]; ok {
		idx.threads[i] = meta
	} else {
		idx.byID[meta.ID] = len(idx.threads)
		idx.threads = append(idx.threads, meta)
	}
	return idx.saveLocked()
}

func (idx *index) saveLocked() error {
	data, err := json.MarshalIndent(indexFile{Threads: idx.threads}, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(idx.path, data, 0o644)
}
