package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_StaleAfterTTLExpiry(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := New()
	r.now = func() time.Time { return start }
	r.Set("T", "codex", "listening", nil)

	r.now = func() time.Time { return start.Add(TTL + time.Second) }
	entries := r.Snapshot("T")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Stale)
}

func TestSnapshot_NotStaleJustBeforeTTL(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := New()
	r.now = func() time.Time { return start }
	r.Set("T", "codex", "listening", nil)

	r.now = func() time.Time { return start.Add(TTL - time.Second) }
	entries := r.Snapshot("T")
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Stale)
}
