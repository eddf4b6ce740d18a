package control

import "github.com/agent-bridge/bridge/internal/event"

// Reduce folds every qualifying control event in events, in order,
// into a thread state. Non-control events and control events not from
// the reserved "user" participant are ignored. Reduce depends only on
// events: appending a non-control event never changes its result.
func Reduce(events []*event.Event) State {
	s := New()
	for _, e := range events {
		s = foldEvent(s, e)
	}
	return s
}

// StateBefore folds every qualifying control event that appears
// strictly earlier in events than the one identified by eventID,
// stopping at (and excluding) that event. Controls never retroactively
// apply to earlier messages.
func StateBefore(events []*event.Event, eventID string) State {
	s := New()
	for _, e := range events {
		if e.ID == eventID {
			break
		}
		s = foldEvent(s, e)
	}
	return s
}

func foldEvent(s State, e *event.Event) State {
	if !e.IsUserControl() {
		return s
	}
	for _, v := range variants(e.Content) {
		s = Apply(s, v)
	}
	return s
}

// Fold applies e to s exactly as Reduce would applied it inline,
// letting a caller scanning a thread incrementally (rather than
// folding a whole slice at once) maintain the same state.
func Fold(s State, e *event.Event) State {
	return foldEvent(s, e)
}
