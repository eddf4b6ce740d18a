package control

import "strings"

// Variant is one control directive extracted from an event's content.
// Apply is the only operation a variant supports — a sum type over
// Mute, Unmute, Pause, and Discussion, expressed as an interface
// rather than a type-switch hierarchy so unknown future variants
// simply don't implement it (and are inert).
type Variant interface {
	apply(State) State
}

// Mute adds targets to the muted set. Incremental: repeated mutes
// accumulate rather than replace.
type Mute struct{ Targets []string }

func (m Mute) apply(s State) State {
	next := s.Clone()
	for _, t := range m.Targets {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		next.Muted[t] = struct{}{}
	}
	return next
}

// Unmute removes targets from the muted set.
type Unmute struct{ Targets []string }

func (u Unmute) apply(s State) State {
	next := s.Clone()
	for _, t := range u.Targets {
		delete(next.Muted, strings.TrimSpace(t))
	}
	return next
}

// Pause sets the paused flag. Last-write-wins.
type Pause struct{ On bool }

func (p Pause) apply(s State) State {
	next := s.Clone()
	next.Paused = p.On
	return next
}

// Discussion sets the discussion policy. Last-write-wins.
type Discussion struct {
	On                 bool
	AllowAgentMentions bool
}

func (d Discussion) apply(s State) State {
	next := s.Clone()
	next.DiscussionOn = d.On
	next.AllowAgentMentions = d.AllowAgentMentions
	return next
}

// Apply folds a single variant into state.
func Apply(s State, v Variant) State {
	return v.apply(s)
}
