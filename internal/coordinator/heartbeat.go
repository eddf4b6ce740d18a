package coordinator

import (
	"context"
	"time"
)

// coordinatorProfileClient is the client name published in the
// coordinator's own presence profile.
const coordinatorProfileClient = "agent-bridge"

// profileDetails projects an agent's configured profile into the
// details payload PostPresence publishes, so GET .../presence surfaces
// each agent's nickname/client/model/roles instead of leaving it null.
func profileDetails(p AgentProfile) map[string]any {
	details := map[string]any{}
	if p.Client != "" {
		details["client"] = p.Client
	}
	if p.Model != "" {
		details["model"] = p.Model
	}
	if p.Nickname != "" {
		details["nickname"] = p.Nickname
	}
	if len(p.Roles) > 0 {
		details["roles"] = p.Roles
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// maybeHeartbeat implements §4.9: every presence_heartbeat_s, publish
// listening for every configured agent in every known thread (save
// those currently invoking), plus for the coordinator itself. A
// presence_heartbeat_s of 0 disables it entirely.
func (c *Coordinator) maybeHeartbeat(ctx context.Context, threads []threadRef) {
	if c.cfg.PresenceHeartbeatS <= 0 {
		return
	}
	interval := time.Duration(c.cfg.PresenceHeartbeatS) * time.Second
	if time.Since(c.lastHeartbeat) < interval {
		return
	}
	c.lastHeartbeat = time.Now()

	for _, th := range threads {
		for agentID, agentCfg := range c.cfg.Agents {
			if c.isActive(th.ID, agentID) {
				continue
			}
			_ = c.client.PostPresence(ctx, th.ID, agentID, "listening", profileDetails(agentCfg.Profile))
		}
		_ = c.client.PostPresence(ctx, th.ID, c.cfg.CoordinatorID, "listening", map[string]any{
			"client":   coordinatorProfileClient,
			"model":    "coordinator",
			"nickname": "coordinator",
		})
	}
}
