package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvokeAdapter_Success(t *testing.T) {
	cfg := AgentConfig{Command: []string{"/bin/sh", "-c", "cat >/dev/null; echo hello"}}
	result := invokeAdapter(context.Background(), cfg, AdapterPayload{}, 5*time.Second)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Stdout)
}

func TestInvokeAdapter_NonZeroExit(t *testing.T) {
	cfg := AgentConfig{Command: []string{"/bin/sh", "-c", "cat >/dev/null; echo boom >&2; exit 3"}}
	result := invokeAdapter(context.Background(), cfg, AdapterPayload{}, 5*time.Second)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Stderr, "boom")
}

func TestInvokeAdapter_Timeout(t *testing.T) {
	cfg := AgentConfig{Command: []string{"/bin/sh", "-c", "sleep 5"}}
	result := invokeAdapter(context.Background(), cfg, AdapterPayload{}, 50*time.Millisecond)
	assert.Equal(t, exitTimeout, result.ExitCode)
	assert.Contains(t, result.Stderr, "timeout")
}

func TestInvokeAdapter_SpawnFailure(t *testing.T) {
	cfg := AgentConfig{Command: []string{"/no/such/binary-xyz"}}
	result := invokeAdapter(context.Background(), cfg, AdapterPayload{}, 5*time.Second)
	assert.Equal(t, exitSpawnFail, result.ExitCode)
	assert.Error(t, result.SpawnErr)
}

func TestReplyContent_EmptyBecomesPlaceholder(t *testing.T) {
	assert.Equal(t, "[no output]", replyContent("   \n", 100))
}

func TestReplyContent_Trimmed(t *testing.T) {
	assert.Equal(t, "hello", replyContent("  hello  \n", 100))
}

func TestFailureContent_IncludesExitAndStderr(t *testing.T) {
	result := invocationResult{ExitCode: 3, Stderr: "boom", Stdout: "partial"}
	got := failureContent(result)
	assert.Contains(t, got, "exit")
	assert.Contains(t, got, "3")
	assert.Contains(t, got, "boom")
}
