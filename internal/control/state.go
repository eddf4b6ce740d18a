// Package control implements the pure control-event reducer: folding
// user-issued control events into an authoritative thread state
// (paused flag, muted set, discussion policy).
package control

import "sort"

// State is the derived, never-persisted state of a thread.
type State struct {
	Paused             bool
	Muted              map[string]struct{}
	DiscussionOn       bool
	AllowAgentMentions bool
}

// New returns the zero state: not paused, nobody muted, discussion off.
func New() State {
	return State{Muted: map[string]struct{}{}}
}

// Clone returns a deep copy so callers can mutate the muted set
// without affecting a shared State value.
func (s State) Clone() State {
	muted := make(map[string]struct{}, len(s.Muted))
	for k := range s.Muted {
		muted[k] = struct{}{}
	}
	return State{
		Paused:             s.Paused,
		Muted:              muted,
		DiscussionOn:       s.DiscussionOn,
		AllowAgentMentions: s.AllowAgentMentions,
	}
}

// IsMuted reports whether participant is currently muted.
func (s State) IsMuted(participant string) bool {
	_, ok := s.Muted[participant]
	return ok
}

// MutedSorted returns the muted set as a sorted slice, the shape the
// HTTP surface reports it in.
func (s State) MutedSorted() []string {
	out := make([]string, 0, len(s.Muted))
	for id := range s.Muted {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
