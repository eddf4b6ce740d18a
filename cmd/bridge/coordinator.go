package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/agent-bridge/bridge/internal/coordinator"
	"github.com/agent-bridge/bridge/internal/logging"
)

func runCoordinator(args []string) error {
	fs := flag.NewFlagSet("coordinator", flag.ExitOnError)
	configPath := fs.String("config", defaultCoordinatorConfigPath(), "coordinator config path")
	statePath := fs.String("state", defaultCoordinatorStatePath(), "cursor state file path")
	showVersion := fs.Bool("version", false, "print version and exit")
	_ = fs.Parse(args)

	if *showVersion {
		fmt.Println(version)
		return nil
	}

	cfg, err := coordinator.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.PrintBanner("coordinator", version, cfg.BridgeURL)

	var cursor *coordinator.CursorStore
	if cfg.StartupMode == "resume" {
		cursor, err = coordinator.LoadCursorStore(*statePath)
	} else {
		cursor = coordinator.NewCursorStore(*statePath)
	}
	if err != nil {
		return fmt.Errorf("load cursor state: %w", err)
	}

	client := coordinator.NewBridgeClient(cfg.BridgeURL)
	co := coordinator.New(cfg, client, cursor)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return co.Run(ctx)
}

func defaultCoordinatorConfigPath() string {
	if v := os.Getenv("BRIDGE_COORDINATOR_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(defaultConfigDir(), "coordinator.json")
}

func defaultCoordinatorStatePath() string {
	if v := os.Getenv("BRIDGE_COORDINATOR_STATE"); v != "" {
		return v
	}
	return filepath.Join("conversations", "coordinator_state.json")
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "agent-bridge")
	}
	return filepath.Join(home, ".config", "agent-bridge")
}
