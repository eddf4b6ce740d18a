package mention_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agent-bridge/bridge/internal/mention"
)

func TestExtract_StripsTrailingPunctuationAndLowercases(t *testing.T) {
	got := mention.Extract("hello @Codex, and @claude!", "@")
	assert.Equal(t, []string{"codex", "claude"}, got)
}

func TestExtract_DefaultsPrefixToAt(t *testing.T) {
	got := mention.Extract("hi @codex", "")
	assert.Equal(t, []string{"codex"}, got)
}

func TestExtract_NoMentionsReturnsEmpty(t *testing.T) {
	got := mention.Extract("just a message", "@")
	assert.Empty(t, got)
}

func TestResolve_ReservedWord(t *testing.T) {
	d := mention.NewDirectory(nil)
	r := mention.Resolve(d, "all")
	assert.True(t, r.Reserved)
}

func TestResolve_ExactID(t *testing.T) {
	d := mention.NewDirectory([]mention.Profile{{ID: "codex", Nickname: "codex"}})
	r := mention.Resolve(d, "codex")
	assert.Equal(t, []string{"codex"}, r.IDs)
	assert.False(t, r.Ambiguous)
}

func TestResolve_ExactIDCaseInsensitive(t *testing.T) {
	d := mention.NewDirectory([]mention.Profile{{ID: "Agent-One"}})
	r := mention.Resolve(d, "agent-one")
	assert.Equal(t, []string{"Agent-One"}, r.IDs, "a mixed-case configured id must still resolve from a lowercased mention token")
}

func TestResolve_UniqueNickname(t *testing.T) {
	d := mention.NewDirectory([]mention.Profile{{ID: "agent-1", Nickname: "bob"}})
	r := mention.Resolve(d, "bob")
	assert.Equal(t, []string{"agent-1"}, r.IDs)
}

func TestResolve_AmbiguousNickname(t *testing.T) {
	d := mention.NewDirectory([]mention.Profile{
		{ID: "agent-1", Nickname: "bob", Client: "codex-cli", Model: "gpt"},
		{ID: "agent-2", Nickname: "bob", Client: "claude-code", Model: "opus"},
	})
	r := mention.Resolve(d, "bob")
	assert.True(t, r.Ambiguous)
	assert.Len(t, r.Candidates, 2)
}

func TestResolve_CategoryUnion(t *testing.T) {
	d := mention.NewDirectory([]mention.Profile{
		{ID: "agent-1", Roles: []string{"reviewer"}},
		{ID: "agent-2", Roles: []string{"reviewer"}},
		{ID: "agent-3", Roles: []string{"writer"}},
	})
	r := mention.Resolve(d, "reviewer")
	assert.ElementsMatch(t, []string{"agent-1", "agent-2"}, r.IDs)
}

func TestResolve_UnknownTokenReturnsNoIDs(t *testing.T) {
	d := mention.NewDirectory(nil)
	r := mention.Resolve(d, "nobody")
	assert.Empty(t, r.IDs)
	assert.False(t, r.Reserved)
	assert.False(t, r.Ambiguous)
}

func TestResolveAll_FiltersSelfMention(t *testing.T) {
	d := mention.NewDirectory([]mention.Profile{{ID: "codex", Nickname: "codex"}})
	targets, _, _ := mention.ResolveAll(d, []string{"codex"}, "codex")
	assert.Empty(t, targets, "self-mention must be filtered to prevent self-wake loops")
}

func TestResolveAll_DedupsAcrossTokens(t *testing.T) {
	d := mention.NewDirectory([]mention.Profile{
		{ID: "codex", Nickname: "codex", Roles: []string{"reviewer"}},
	})
	targets, _, _ := mention.ResolveAll(d, []string{"codex", "reviewer"}, "user")
	assert.Equal(t, []string{"codex"}, targets)
}

func TestResolveAll_CollectsReservedAndAmbiguous(t *testing.T) {
	d := mention.NewDirectory([]mention.Profile{
		{ID: "agent-1", Nickname: "bob"},
		{ID: "agent-2", Nickname: "bob"},
	})
	targets, reservedHits, ambiguous := mention.ResolveAll(d, []string{"everyone", "bob"}, "user")
	assert.Empty(t, targets)
	assert.Equal(t, []string{"everyone"}, reservedHits)
	assert.Len(t, ambiguous, 1)
}

func TestProfile_DisplayLabel(t *testing.T) {
	p := mention.Profile{ID: "agent-1", Nickname: "bob", Client: "codex-cli", Model: "gpt-5"}
	assert.Equal(t, "bob (codex-cli/gpt-5)", p.DisplayLabel())
}

func TestProfile_DisplayLabelFallsBackToID(t *testing.T) {
	p := mention.Profile{ID: "agent-1"}
	assert.Equal(t, "agent-1", p.DisplayLabel())
}
