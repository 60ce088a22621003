// Package connectivity tracks whether the remote store is reachable.
//
// Raw signals come from a periodic probe and from Signal. A candidate state
// has to hold for the debounce window before it becomes the current state,
// so a flapping link produces at most one transition per window.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/logging"
)

// Target receives committed transitions. services.SyncEngine satisfies it.
type Target interface {
	SetOnline(online bool)
	Trigger(ctx context.Context)
}

// Prober checks reachability of the remote store.
type Prober interface {
	Ping(ctx context.Context) error
}

type Config struct {
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
	Debounce      time.Duration
}

type Monitor struct {
	target Target
	prober Prober
	logger logging.Logger
	cfg    Config

	mu        sync.Mutex
	online    bool
	pending   bool
	candidate bool
	gen       uint64
	timer     *time.Timer
	runCtx    context.Context
}

// NewMonitor starts Offline. The first successful probe is therefore a
// transition and drains whatever a previous process left in the queue.
func NewMonitor(target Target, prober Prober, logger logging.Logger, cfg Config) *Monitor {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = 5 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 3 * time.Second
	}
	return &Monitor{
		target: target,
		prober: prober,
		logger: logger.With("module", "connectivity"),
		cfg:    cfg,
		runCtx: context.Background(),
	}
}

// Online reports the committed state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Signal feeds a raw reachability observation.
func (m *Monitor) Signal(online bool) {
	m.mu.Lock()

	if m.pending && m.candidate == online {
		m.mu.Unlock()
		return
	}

	m.cancelPendingLocked()
	if online == m.online {
		m.mu.Unlock()
		return
	}

	m.candidate = online
	m.pending = true
	gen := m.gen

	if m.cfg.Debounce <= 0 {
		m.mu.Unlock()
		m.commit(gen)
		return
	}

	m.timer = time.AfterFunc(m.cfg.Debounce, func() { m.commit(gen) })
	m.mu.Unlock()
}

func (m *Monitor) cancelPendingLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.pending = false
	m.gen++
}

func (m *Monitor) commit(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || !m.pending {
		m.mu.Unlock()
		return
	}
	m.pending = false
	m.timer = nil
	m.online = m.candidate
	online := m.online
	ctx := m.runCtx
	m.mu.Unlock()

	if online {
		m.logger.Info(ctx, "remote store reachable, switched to online mode")
	} else {
		m.logger.Info(ctx, "remote store unreachable, switched to offline mode")
	}

	m.target.SetOnline(online)
	if online {
		m.target.Trigger(ctx)
	}
}

func (m *Monitor) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	err := m.prober.Ping(pctx)
	cancel()

	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		m.logger.Debug(ctx, "probe failed", "error", err)
	}
	m.Signal(err == nil)
}

// Run probes right away and then every ProbeInterval until ctx is done.
// Syncs triggered by transitions inherit ctx.
func (m *Monitor) Run(ctx context.Context) {
	m.mu.Lock()
	m.runCtx = ctx
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.cancelPendingLocked()
		m.mu.Unlock()
	}()

	m.probe(ctx)

	ticker := time.NewTicker(m.cfg.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
