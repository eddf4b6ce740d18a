package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"syscall"
	"time"

	"os/signal"

	"github.com/agent-bridge/bridge/internal/bridgeapi"
	"github.com/agent-bridge/bridge/internal/coordinator"
	"github.com/agent-bridge/bridge/internal/eventlog"
	"github.com/agent-bridge/bridge/internal/logging"
	"github.com/agent-bridge/bridge/internal/presence"
)

// runStandalone runs the server and, if a coordinator config is
// present, the coordinator in the same process: one binary, one
// address, no separate deployment step. The coordinator talks to the
// server over ordinary HTTP on the loopback address, same as it would
// talk to a remote server.
func runStandalone(args []string) error {
	fs := flag.NewFlagSet("bridge", flag.ExitOnError)
	addr := fs.String("addr", defaultServerAddr(), "listen address")
	dataDir := fs.String("data-dir", defaultServerDataDir(), "data directory")
	configPath := fs.String("config", defaultCoordinatorConfigPath(), "coordinator config path (optional)")
	statePath := fs.String("state", defaultCoordinatorStatePath(), "cursor state file path")
	showVersion := fs.Bool("version", false, "print version and exit")
	_ = fs.Parse(args)

	if *showVersion {
		fmt.Println(version)
		return nil
	}

	logging.PrintBanner("standalone", version, *addr)
	logging.PrintAccessURL(*addr)

	store, err := eventlog.Open(*dataDir)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	srv := bridgeapi.NewServer(*addr, store, presence.New())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	serverErrCh := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		serverErrCh <- srv.Serve(ctx)
	}()

	if _, statErr := os.Stat(*configPath); statErr != nil {
		slog.Info("no coordinator config found, running server only", "path", *configPath)
	} else if cfg, cfgErr := coordinator.LoadConfig(*configPath); cfgErr != nil {
		slog.Warn("coordinator config invalid, running server only", "error", cfgErr)
	} else {
		cfg.BridgeURL = "http://" + loopbackAddr(*addr)
		if waitErr := waitForListener(ctx, *addr); waitErr != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("wait for server: %w", waitErr)
		}

		var cursor *coordinator.CursorStore
		if cfg.StartupMode == "resume" {
			cursor, err = coordinator.LoadCursorStore(*statePath)
		} else {
			cursor = coordinator.NewCursorStore(*statePath)
		}
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("load cursor state: %w", err)
		}

		co := coordinator.New(cfg, coordinator.NewBridgeClient(cfg.BridgeURL), cursor)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if runErr := co.Run(ctx); runErr != nil {
				slog.Error("coordinator error", "error", runErr)
			}
		}()
	}

	select {
	case err := <-serverErrCh:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
		wg.Wait()
		return nil
	}
}

func loopbackAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}

func waitForListener(ctx context.Context, addr string) error {
	url := "http://" + loopbackAddr(addr) + "/threads"
	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 50; i++ {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if resp, err := client.Do(req); err == nil {
			_ = resp.Body.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("server %s not accepting connections in time", addr)
}
