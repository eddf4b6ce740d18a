// Package event defines the wire and on-disk shape of a thread event:
// the single immutable record type every other package in this module
// reads, writes, or folds.
package event

import (
	"encoding/json"
	"strings"
)

// Event types.
const (
	TypeMessage       = "message"
	TypeControl       = "control"
	TypeThreadCreated = "thread.created"
	TypeThreadRenamed = "thread.renamed"
)

// Reserved participant ids.
const (
	ParticipantUser = "user"
	ParticipantAll  = "all"
)

// Event is an immutable record in a thread's append-only log. Content
// is kept as raw JSON because a message event carries a JSON string
// while a control event carries a JSON object (or, for forward
// compatibility with older callers, a JSON-encoded string containing
// that object) — see the control sub-package for the latter's parsing.
type Event struct {
	ID      string          `json:"id"`
	TS      string          `json:"ts"`
	Thread  string          `json:"thread"`
	Type    string          `json:"type"`
	From    string          `json:"from"`
	To      string          `json:"to"`
	Content json.RawMessage `json:"content"`
	Meta    map[string]any  `json:"meta,omitempty"`
}

// ContentString returns Content decoded as a plain string. If Content
// is a JSON string literal it is unquoted; otherwise the raw bytes are
// returned as-is (e.g. a control event's object content).
func (e *Event) ContentString() string {
	var s string
	if err := json.Unmarshal(e.Content, &s); err == nil {
		return s
	}
	return string(e.Content)
}

// SetContentString sets Content to the JSON-encoded form of s, the
// shape every `message` event uses.
func (e *Event) SetContentString(s string) {
	b, _ := json.Marshal(s)
	e.Content = b
}

// ReplyTo returns the meta.reply_to field, if present.
func (e *Event) ReplyTo() string {
	v, _ := e.Meta["reply_to"].(string)
	return v
}

// Tags returns the meta.tags field, if present.
func (e *Event) Tags() []string {
	raw, ok := e.Meta["tags"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// IsUserControl reports whether e is a control event authored by the
// reserved "user" participant — the only events the reducer folds.
func (e *Event) IsUserControl() bool {
	return e.Type == TypeControl && e.From == ParticipantUser
}

// TrimmedNonEmpty reports whether s is non-empty after trimming
// whitespace — used throughout admission and mention resolution.
func TrimmedNonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
