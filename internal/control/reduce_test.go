package control_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agent-bridge/bridge/internal/control"
	"github.com/agent-bridge/bridge/internal/event"
)

func controlEvent(id, content string) *event.Event {
	return &event.Event{
		ID:      id,
		Type:    event.TypeControl,
		From:    event.ParticipantUser,
		Content: []byte(content),
	}
}

func TestReduce_Empty(t *testing.T) {
	s := control.Reduce(nil)
	assert.False(t, s.Paused)
	assert.Empty(t, s.Muted)
}

func TestReduce_MuteIncremental(t *testing.T) {
	events := []*event.Event{
		controlEvent("1", `{"mute":{"mode":"hard","targets":["A"]}}`),
		controlEvent("2", `{"mute":{"mode":"hard","targets":["B"]}}`),
	}
	s := control.Reduce(events)
	assert.True(t, s.IsMuted("A"))
	assert.True(t, s.IsMuted("B"))
}

func TestReduce_MuteThenUnmute(t *testing.T) {
	events := []*event.Event{
		controlEvent("1", `{"mute":{"mode":"hard","targets":["A"]}}`),
		controlEvent("2", `{"unmute":{"targets":["A"]}}`),
	}
	s := control.Reduce(events)
	assert.Empty(t, s.Muted)
}

func TestReduce_PauseLastWriteWins(t *testing.T) {
	events := []*event.Event{
		controlEvent("1", `{"pause":{"on":true}}`),
		controlEvent("2", `{"pause":{"on":false}}`),
	}
	s := control.Reduce(events)
	assert.False(t, s.Paused)
}

func TestReduce_DiscussionDefaultsAllowMentionsToOn(t *testing.T) {
	events := []*event.Event{
		controlEvent("1", `{"discussion":{"on":true}}`),
	}
	s := control.Reduce(events)
	assert.True(t, s.DiscussionOn)
	assert.True(t, s.AllowAgentMentions)
}

func TestReduce_NonUserControlIgnored(t *testing.T) {
	e := controlEvent("1", `{"pause":{"on":true}}`)
	e.From = "codex"
	s := control.Reduce([]*event.Event{e})
	assert.False(t, s.Paused)
}

func TestReduce_NonControlEventsNeverChangeState(t *testing.T) {
	events := []*event.Event{
		controlEvent("1", `{"pause":{"on":true}}`),
		{ID: "2", Type: event.TypeMessage, From: "codex"},
	}
	s := control.Reduce(events)
	assert.True(t, s.Paused)
}

func TestReduce_ModeOtherThanHardIgnored(t *testing.T) {
	events := []*event.Event{
		controlEvent("1", `{"mute":{"mode":"soft","targets":["A"]}}`),
	}
	s := control.Reduce(events)
	assert.Empty(t, s.Muted)
}

func TestReduce_StringEncodedContent(t *testing.T) {
	// content is a JSON-encoded string wrapping the object.
	inner := `{"pause":{"on":true}}`
	wrapped, err := json.Marshal(inner)
	assert.NoError(t, err)
	e := controlEvent("1", string(wrapped))
	s := control.Reduce([]*event.Event{e})
	assert.True(t, s.Paused)
}

func TestStateBefore_ExcludesTargetAndLater(t *testing.T) {
	events := []*event.Event{
		controlEvent("1", `{"mute":{"mode":"hard","targets":["A"]}}`),
		controlEvent("2", `{"mute":{"mode":"hard","targets":["B"]}}`),
	}
	before := control.StateBefore(events, "2")
	assert.True(t, before.IsMuted("A"))
	assert.False(t, before.IsMuted("B"))
}

func TestFold_MatchesReduceWhenAppliedIncrementally(t *testing.T) {
	events := []*event.Event{
		controlEvent("1", `{"mute":{"mode":"hard","targets":["A"]}}`),
		{ID: "2", Type: event.TypeMessage, From: "codex"},
		controlEvent("3", `{"pause":{"on":true}}`),
	}
	s := control.New()
	for _, e := range events {
		s = control.Fold(s, e)
	}
	assert.Equal(t, control.Reduce(events), s)
}

func TestStateBefore_ControlLocality(t *testing.T) {
	// A control at position k affects messages after it but not before.
	events := []*event.Event{
		{ID: "m0", Type: event.TypeMessage, From: "user"},
		controlEvent("c1", `{"pause":{"on":true}}`),
		{ID: "m1", Type: event.TypeMessage, From: "user"},
	}
	assert.False(t, control.StateBefore(events, "m0").Paused)
	assert.True(t, control.StateBefore(events, "m1").Paused)
}
