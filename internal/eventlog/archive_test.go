package eventlog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agent-bridge/bridge/internal/eventlog"
)

func TestRotate_NoOpBelowThreshold(t *testing.T) {
	s := openTestStore(t)
	meta, err := s.CreateThread("t", "user")
	require.NoError(t, err)

	require.NoError(t, s.Rotate(meta.ID))

	events, err := s.ReadAll(meta.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1, "rotation below threshold must not touch the active segment")
}

func TestRotate_UnknownThreadIsNoOp(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Rotate("nonexistent"))
}

func TestDecompressSegment_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.jsonl.zst")

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	payload := []byte(`{"id":"1","ts":"2026-01-01T00:00:00.000Z","content":"\"archived\""}` + "\n")
	require.NoError(t, os.WriteFile(path, enc.EncodeAll(payload, nil), 0o640))

	got, err := eventlog.DecompressSegment(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
