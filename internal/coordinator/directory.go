package coordinator

import (
	"context"

	"github.com/agent-bridge/bridge/internal/mention"
)

// buildDirectory assembles the participant directory for mention
// resolution in thread from the configured agents union the thread's
// live presence snapshot. A presence error is tolerated: the
// directory degrades to configured-agents-only.
func (c *Coordinator) buildDirectory(ctx context.Context, thread string) *mention.Directory {
	profiles := make([]mention.Profile, 0, len(c.cfg.Agents))
	for id, agentCfg := range c.cfg.Agents {
		profiles = append(profiles, mention.Profile{
			ID:       id,
			Nickname: agentCfg.Profile.Nickname,
			Client:   agentCfg.Profile.Client,
			Model:    agentCfg.Profile.Model,
			Roles:    agentCfg.Profile.Roles,
		})
	}

	entries, err := c.client.GetPresence(ctx, thread)
	if err != nil {
		return mention.NewDirectory(profiles)
	}

	known := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		known[p.ID] = struct{}{}
	}
	for _, e := range entries {
		if _, ok := known[e.ID]; ok {
			continue
		}
		profiles = append(profiles, mention.Profile{ID: e.ID})
	}
	return mention.NewDirectory(profiles)
}
