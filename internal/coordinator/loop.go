package coordinator

import (
	"context"
	"log/slog"
	"time"

	"github.com/agent-bridge/bridge/internal/control"
	"github.com/agent-bridge/bridge/internal/event"
	"github.com/agent-bridge/bridge/internal/metrics"
)

// processThread implements §4.6 step 3: load the thread's events,
// fast-forward a never-seen thread to its tail without dispatching,
// otherwise scan new events in order maintaining an incrementally
// folded control state, then persist the advanced cursor.
func (c *Coordinator) processThread(ctx context.Context, threadID string) {
	events, err := c.client.ReadEvents(ctx, threadID, "")
	if err != nil {
		metrics.BridgeRequestErrorsTotal.WithLabelValues("read_events").Inc()
		slog.Error("read events failed", "thread", threadID, "error", err)
		return
	}

	if !c.cursor.Has(threadID) {
		if len(events) == 0 {
			if err := c.cursor.Touch(threadID); err != nil {
				slog.Error("touch cursor failed", "thread", threadID, "error", err)
			}
			return
		}
		tail := events[len(events)-1].TS
		if err := c.cursor.Advance(threadID, tail); err != nil {
			slog.Error("advance cursor failed", "thread", threadID, "error", err)
		}
		return
	}

	cursorTS := c.cursor.Get(threadID)

	state := control.New()
	var newEvents []*event.Event
	for _, e := range events {
		if e.TS <= cursorTS {
			state = control.Fold(state, e)
			continue
		}
		newEvents = append(newEvents, e)
	}

	lastTS := cursorTS
	for _, e := range newEvents {
		if e.Type == event.TypeMessage {
			c.handleMessage(ctx, threadID, e, state)
		}
		state = control.Fold(state, e)
		lastTS = e.TS
	}

	if lastTS != cursorTS {
		if err := c.cursor.Advance(threadID, lastTS); err != nil {
			slog.Error("advance cursor failed", "thread", threadID, "error", err)
		}
	}
}

// handleMessage evaluates the dispatch gate for one new message event
// and invokes every resolved, not-yet-processed target, posting any
// reserved/ambiguous mention notices back to the thread.
func (c *Coordinator) handleMessage(ctx context.Context, threadID string, ev *event.Event, state control.State) {
	if c.processed.Seen(threadID, ev.ID) {
		return
	}

	p := c.plan(ctx, threadID, ev, state)

	if p.ReservedNotice != "" {
		c.postCoordinatorNotice(ctx, threadID, ev.ID, p.ReservedNotice)
	}
	if p.AmbiguousNotice != "" {
		c.postCoordinatorNotice(ctx, threadID, ev.ID, p.AmbiguousNotice)
	}

	for _, agentID := range p.Targets {
		c.processed.Mark(threadID, ev.ID)
		c.invoke(ctx, threadID, agentID, ev)
	}
}

func (c *Coordinator) postCoordinatorNotice(ctx context.Context, threadID, triggerID, text string) {
	ev := &event.Event{
		From: c.cfg.CoordinatorID,
		To:   event.ParticipantUser,
		Meta: map[string]any{"reply_to": triggerID, "tags": []string{"coordinator"}},
	}
	ev.SetContentString(text)
	if _, err := c.client.AppendEvent(ctx, threadID, ev); err != nil {
		metrics.BridgeRequestErrorsTotal.WithLabelValues("append_event").Inc()
		slog.Error("post coordinator notice failed", "thread", threadID, "error", err)
	}
}

func (c *Coordinator) markActive(thread, agent string) {
	c.activeMu.Lock()
	defer c.activeMu.Unlock()
	if c.active[thread] == nil {
		c.active[thread] = map[string]struct{}{}
	}
	c.active[thread][agent] = struct{}{}
}

func (c *Coordinator) clearActive(thread, agent string) {
	c.activeMu.Lock()
	defer c.activeMu.Unlock()
	delete(c.active[thread], agent)
}

func (c *Coordinator) isActive(thread, agent string) bool {
	c.activeMu.Lock()
	defer c.activeMu.Unlock()
	_, ok := c.active[thread][agent]
	return ok
}

func (c *Coordinator) invoke(ctx context.Context, threadID, agentID string, trigger *event.Event) {
	agentCfg, ok := c.cfg.Agents[agentID]
	if !ok {
		return
	}

	c.markActive(threadID, agentID)
	defer c.clearActive(threadID, agentID)

	details := profileDetails(agentCfg.Profile)
	_ = c.client.PostPresence(ctx, threadID, agentID, "thinking", details)
	defer func() { _ = c.client.PostPresence(ctx, threadID, agentID, "listening", details) }()

	contextWindow, err := c.client.ReadEvents(ctx, threadID, "")
	if err != nil {
		contextWindow = nil
	}
	if n := c.cfg.ContextWindowSize; n > 0 && len(contextWindow) > n {
		contextWindow = contextWindow[len(contextWindow)-n:]
	}

	var payload AdapterPayload
	payload.Bridge.URL = c.cfg.BridgeURL
	payload.Thread.ID = threadID
	payload.Trigger = payloadTrigger{
		ID: trigger.ID, TS: trigger.TS, Type: trigger.Type,
		From: trigger.From, To: trigger.To, Content: trigger.Content,
	}
	payload.ContextWindow = contextWindow

	timeout := time.Duration(c.cfg.AdapterTimeoutS) * time.Second
	start := time.Now()
	result := invokeAdapter(ctx, agentCfg, payload, timeout)
	metrics.DispatchDuration.WithLabelValues(agentID).Observe(time.Since(start).Seconds())

	var reply *event.Event
	if result.ExitCode == 0 && result.SpawnErr == nil {
		metrics.DispatchesTotal.WithLabelValues(agentID, "success").Inc()
		reply = &event.Event{
			From: agentID,
			To:   event.ParticipantAll,
			Meta: map[string]any{"reply_to": trigger.ID, "tags": []string{"coordinator"}},
		}
		reply.SetContentString(replyContent(result.Stdout, c.cfg.MaxReplyChars))
	} else {
		metrics.DispatchesTotal.WithLabelValues(agentID, "error").Inc()
		reply = &event.Event{
			From: c.cfg.CoordinatorID,
			To:   event.ParticipantAll,
			Meta: map[string]any{"reply_to": trigger.ID, "tags": []string{"coordinator", "error"}},
		}
		reply.SetContentString(failureContent(result))
	}

	if _, err := c.client.AppendEvent(ctx, threadID, reply); err != nil {
		metrics.BridgeRequestErrorsTotal.WithLabelValues("append_event").Inc()
		slog.Error("post adapter reply failed", "thread", threadID, "agent", agentID, "error", err)
	}
}
