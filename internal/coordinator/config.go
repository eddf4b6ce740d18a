// Package coordinator is the standalone process that polls the bridge
// server for new thread activity, resolves mention-based dispatch, and
// invokes configured agent adapters (C6-C9).
package coordinator

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AgentProfile is the display identity the mention directory and
// presence heartbeat use for a configured agent.
type AgentProfile struct {
	Client   string   `koanf:"client"`
	Model    string   `koanf:"model"`
	Nickname string   `koanf:"nickname"`
	Roles    []string `koanf:"roles"`
}

// AgentConfig is one entry of the agents map: how to invoke the
// adapter subprocess for a single agent id.
type AgentConfig struct {
	Command []string          `koanf:"command"`
	Cwd     string            `koanf:"cwd"`
	Env     map[string]string `koanf:"env"`
	Profile AgentProfile      `koanf:"profile"`
}

// Config is the coordinator's full runtime configuration, see §6.4.
type Config struct {
	BridgeURL          string                 `koanf:"bridge_url"`
	CoordinatorID      string                 `koanf:"coordinator_id"`
	Agents             map[string]AgentConfig `koanf:"agents"`
	MaxReplyChars      int                    `koanf:"max_reply_chars"`
	ContextWindowSize  int                    `koanf:"context_window_size"`
	AdapterTimeoutS    int                    `koanf:"adapter_timeout_s"`
	PollThreadsS       int                    `koanf:"poll_threads_s"`
	StartupMode        string                 `koanf:"startup_mode"`
	EnableMentions     bool                   `koanf:"enable_mentions"`
	MentionPrefix      string                 `koanf:"mention_prefix"`
	PresenceHeartbeatS int                    `koanf:"presence_heartbeat_s"`
}

func defaults() map[string]any {
	return map[string]any{
		"bridge_url":           "http://localhost:5111",
		"coordinator_id":       "bridge-coordinator",
		"max_reply_chars":      8000,
		"context_window_size":  25,
		"adapter_timeout_s":    600,
		"poll_threads_s":       5,
		"startup_mode":         "end",
		"enable_mentions":      true,
		"mention_prefix":       "@",
		"presence_heartbeat_s": 10,
	}
}

// envTransform turns BRIDGE_COORDINATOR_POLL_THREADS_S into
// poll_threads_s, matching the koanf key naming used throughout.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "BRIDGE_COORDINATOR_"))
}

// LoadConfig layers defaults, then the config file at path (skipped
// when path is empty; a non-empty path to a missing file is an error),
// then BRIDGE_COORDINATOR_* environment overrides, and unmarshals the
// result.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("BRIDGE_COORDINATOR_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BridgeURL == "" {
		return fmt.Errorf("bridge_url is required")
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("at least one agent must be configured")
	}
	for id, a := range c.Agents {
		if len(a.Command) == 0 {
			return fmt.Errorf("agent %q: command is required", id)
		}
	}
	if c.StartupMode != "end" && c.StartupMode != "resume" {
		return fmt.Errorf("startup_mode must be %q or %q, got %q", "end", "resume", c.StartupMode)
	}
	return nil
}
