package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/agent-bridge/bridge/internal/control"
	"github.com/agent-bridge/bridge/internal/event"
	"github.com/agent-bridge/bridge/internal/mention"
)

// dispatchPlan is the outcome of evaluating the mention resolver and
// dispatch gate (§4.7) for one message event.
type dispatchPlan struct {
	Targets         []string // agent ids to invoke, after the mute gate
	ReservedNotice  string   // non-empty: a to:"user" coordinator message to post
	AmbiguousNotice string   // non-empty: a to:"user" coordinator message to post
}

func (c *Coordinator) plan(ctx context.Context, thread string, ev *event.Event, state control.State) dispatchPlan {
	if ev.From == c.cfg.CoordinatorID {
		return dispatchPlan{}
	}
	if ev.To == event.ParticipantUser {
		return dispatchPlan{}
	}
	if state.Paused {
		return dispatchPlan{}
	}

	if _, ok := c.cfg.Agents[ev.To]; ok {
		targets := muteFilter([]string{ev.To}, state)
		return dispatchPlan{Targets: targets}
	}

	if ev.To != event.ParticipantAll {
		return dispatchPlan{}
	}

	if !c.cfg.EnableMentions {
		return dispatchPlan{}
	}
	mayMention := ev.From == event.ParticipantUser || (state.DiscussionOn && state.AllowAgentMentions)
	if !mayMention {
		return dispatchPlan{}
	}

	tokens := mention.Extract(ev.ContentString(), c.cfg.MentionPrefix)
	if len(tokens) == 0 {
		return dispatchPlan{}
	}

	dir := c.buildDirectory(ctx, thread)
	targets, reservedHits, ambiguous := mention.ResolveAll(dir, tokens, ev.From)
	targets = muteFilter(targets, state)

	plan := dispatchPlan{Targets: targets}
	if len(reservedHits) > 0 && ev.From == event.ParticipantUser {
		plan.ReservedNotice = fmt.Sprintf("reserved mention%s not supported: %s",
			pluralSuffix(len(reservedHits)), strings.Join(reservedHits, ", "))
	}
	if len(ambiguous) > 0 {
		plan.AmbiguousNotice = ambiguityNotice(ambiguous)
	}
	return plan
}

func muteFilter(targets []string, state control.State) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if state.IsMuted(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func ambiguityNotice(ambiguous []mention.Resolution) string {
	var b strings.Builder
	for i, r := range ambiguous {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%q matches", r.Token)
		for j, cand := range r.Candidates {
			if j > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, " %s — %s", cand.ID, cand.DisplayLabel())
		}
	}
	return b.String()
}
