package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/agent-bridge/bridge/internal/metrics"
)

// Coordinator is the single cooperative worker driving the poll loop,
// dispatch gate, adapter invocation, and presence heartbeat.
type Coordinator struct {
	cfg       *Config
	client    *BridgeClient
	cursor    *CursorStore
	processed *ProcessedSet

	activeMu sync.Mutex
	active   map[string]map[string]struct{} // thread -> agent -> invoking now

	lastHeartbeat time.Time
}

// New wires a Coordinator from its already-loaded dependencies.
func New(cfg *Config, client *BridgeClient, cursor *CursorStore) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		client:    client,
		cursor:    cursor,
		processed: NewProcessedSet(),
		active:    map[string]map[string]struct{}{},
	}
}

func newListBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 60 * time.Second
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.2
	b.Reset()
	return b
}

// Run blocks, ticking every poll_threads_s, until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	interval := time.Duration(c.cfg.PollThreadsS) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("coordinator started", "bridge_url", c.cfg.BridgeURL, "agents", len(c.cfg.Agents), "poll_interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("coordinator stopping")
			return nil
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Coordinator) tick(ctx context.Context) {
	defer metrics.PollTicksTotal.Inc()

	threads, err := c.listThreads(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("list threads failed permanently this tick", "error", err)
		return
	}

	c.maybeHeartbeat(ctx, threads)

	for _, th := range threads {
		if ctx.Err() != nil {
			return
		}
		c.processThread(ctx, th.ID)
	}
}

// listThreads retries with exponential backoff (1s→60s) until success,
// ctx cancellation, or the backoff library's default maximum elapsed
// time, matching §4.6 step 1.
func (c *Coordinator) listThreads(ctx context.Context) ([]threadRef, error) {
	bo := newListBackoff()
	op := func() ([]threadRef, error) {
		metas, err := c.client.ListThreads(ctx)
		if err != nil {
			slog.Warn("list threads failed, retrying", "error", err)
			return nil, err
		}
		refs := make([]threadRef, 0, len(metas))
		for _, m := range metas {
			refs = append(refs, threadRef{ID: m.ID})
		}
		return refs, nil
	}
	return backoff.Retry(ctx, op, backoff.WithBackOff(bo))
}

type threadRef struct {
	ID string
}
