package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agent-bridge/bridge/internal/bridgeapi"
	"github.com/agent-bridge/bridge/internal/eventlog"
	"github.com/agent-bridge/bridge/internal/logging"
	"github.com/agent-bridge/bridge/internal/presence"
)

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	addr := fs.String("addr", defaultServerAddr(), "listen address")
	dataDir := fs.String("data-dir", defaultServerDataDir(), "data directory")
	showVersion := fs.Bool("version", false, "print version and exit")
	_ = fs.Parse(args)

	if *showVersion {
		fmt.Println(version)
		return nil
	}

	logging.PrintBanner("server", version, *addr)
	logging.PrintAccessURL(*addr)

	store, err := eventlog.Open(*dataDir)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}

	srv := bridgeapi.NewServer(*addr, store, presence.New())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}

func defaultServerAddr() string {
	if v := os.Getenv("BRIDGE_SERVER_ADDR"); v != "" {
		return v
	}
	return ":5111"
}

func defaultServerDataDir() string {
	if v := os.Getenv("BRIDGE_SERVER_DATA_DIR"); v != "" {
		return v
	}
	return "./conversations"
}
