package coordinator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCursor(t *testing.T) *CursorStore {
	t.Helper()
	return NewCursorStore(filepath.Join(t.TempDir(), "cursor.json"))
}

func TestProcessThread_NeverSeenEmptyThreadTouchesCursor(t *testing.T) {
	bridge := newFakeBridge()
	bridge.addThread("t1")
	srv := bridge.server()
	defer srv.Close()

	cursor := newTestCursor(t)
	c := New(&Config{CoordinatorID: "bridge-coordinator", Agents: map[string]AgentConfig{}}, NewBridgeClient(srv.URL), cursor)

	c.processThread(context.Background(), "t1")

	assert.True(t, cursor.Has("t1"))
	assert.Equal(t, "", cursor.Get("t1"))
}

func TestProcessThread_NeverSeenNonEmptyThreadFastForwardsWithoutDispatch(t *testing.T) {
	bridge := newFakeBridge()
	bridge.addThread("t1", messageEvent("1", "user", "codex", "hi"))
	bridge.events["t1"][0].TS = "2026-01-01T00:00:00.000Z"
	srv := bridge.server()
	defer srv.Close()

	cursor := newTestCursor(t)
	c := New(&Config{CoordinatorID: "bridge-coordinator", Agents: map[string]AgentConfig{"codex": {Command: []string{"true"}}}}, NewBridgeClient(srv.URL), cursor)

	c.processThread(context.Background(), "t1")

	assert.Equal(t, "2026-01-01T00:00:00.000Z", cursor.Get("t1"))
	// no reply should have been appended: a first-seen thread is
	// fast-forwarded to its tail, never dispatched against.
	assert.Len(t, bridge.events["t1"], 1)
}

func TestProcessThread_DispatchesNewMessageAndAdvancesCursor(t *testing.T) {
	bridge := newFakeBridge()
	seed := messageEvent("0", "user", "user", "seed")
	seed.TS = "2026-01-01T00:00:00.000Z"
	bridge.addThread("t1", seed)
	srv := bridge.server()
	defer srv.Close()

	cursor := newTestCursor(t)
	require.NoError(t, cursor.Advance("t1", seed.TS))

	cfg := &Config{
		CoordinatorID:     "bridge-coordinator",
		Agents:            map[string]AgentConfig{"codex": {Command: []string{"echo", "hello there"}}},
		MaxReplyChars:     8000,
		AdapterTimeoutS:   5,
		ContextWindowSize: 25,
	}
	c := New(cfg, NewBridgeClient(srv.URL), cursor)

	msg := messageEvent("1", "user", "codex", "hi")
	msg.TS = "2026-01-01T00:00:01.000Z"
	bridge.mu.Lock()
	bridge.events["t1"] = append(bridge.events["t1"], msg)
	bridge.mu.Unlock()

	c.processThread(context.Background(), "t1")

	assert.Equal(t, msg.TS, cursor.Get("t1"))
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	require.Len(t, bridge.events["t1"], 3) // seed + trigger + reply
	reply := bridge.events["t1"][2]
	assert.Equal(t, "codex", reply.From)
	assert.Contains(t, reply.ContentString(), "hello there")
}

func TestProcessThread_SkipsAlreadyProcessedEvent(t *testing.T) {
	bridge := newFakeBridge()
	seed := messageEvent("0", "user", "user", "seed")
	seed.TS = "2026-01-01T00:00:00.000Z"
	bridge.addThread("t1", seed)
	srv := bridge.server()
	defer srv.Close()

	cursor := newTestCursor(t)
	require.NoError(t, cursor.Advance("t1", seed.TS))

	cfg := &Config{
		CoordinatorID:   "bridge-coordinator",
		Agents:          map[string]AgentConfig{"codex": {Command: []string{"echo", "hi"}}},
		AdapterTimeoutS: 5,
	}
	c := New(cfg, NewBridgeClient(srv.URL), cursor)
	c.processed.Mark("t1", "1")

	msg := messageEvent("1", "user", "codex", "hi")
	msg.TS = "2026-01-01T00:00:01.000Z"
	bridge.mu.Lock()
	bridge.events["t1"] = append(bridge.events["t1"], msg)
	bridge.mu.Unlock()

	c.processThread(context.Background(), "t1")

	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	assert.Len(t, bridge.events["t1"], 2, "already-processed trigger must not produce a reply")
}

func TestProcessThread_ReadEventsErrorIsNonFatal(t *testing.T) {
	cursor := newTestCursor(t)
	c := New(&Config{CoordinatorID: "bridge-coordinator", Agents: map[string]AgentConfig{}}, NewBridgeClient("http://127.0.0.1:0"), cursor)
	assert.NotPanics(t, func() {
		c.processThread(context.Background(), "t1")
	})
	assert.False(t, cursor.Has("t1"))
}
