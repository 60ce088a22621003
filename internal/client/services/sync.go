package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/client/client"
	"github.com/dmitrijs2005/vinscanner/internal/client/repositories/vins"
	"github.com/dmitrijs2005/vinscanner/internal/common"
	"github.com/dmitrijs2005/vinscanner/internal/logging"
)

// SyncResult summarizes one engine run.
type SyncResult struct {
	Synced  int `json:"synced"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`

	// Coalesced is set when another run was already in flight and this call
	// did nothing.
	Coalesced bool `json:"coalesced,omitempty"`

	// Skipped is set when no identity was resolved.
	Skipped bool `json:"skipped,omitempty"`
}

type EngineConfig struct {
	// RemoteTimeout bounds every remote call of a run.
	RemoteTimeout time.Duration

	// StatusResetDelay returns a finished phase to Idle; 0 keeps it.
	StatusResetDelay time.Duration
}

// SyncEngine drains the durable queue into the remote store and owns the
// SyncState.
//
// A run is never re-entered: a call while a run is in flight returns at once
// with SyncResult.Coalesced. The batch is the queue snapshot taken when the
// run starts; records enqueued later wait for the next run. A failing record
// is logged and skipped, the run carries on with the next one.
//
// There is no idempotency key on the remote side. If the process dies after
// the remote insert succeeded but before MarkSynced committed, the record is
// sent again by the next run and the remote store ends up with two rows.
type SyncEngine struct {
	queue    vins.Repository
	remote   client.Client
	identity IdentityResolver
	logger   logging.Logger
	cfg      EngineConfig

	running atomic.Bool
	wg      sync.WaitGroup

	hub stateHub

	resetMu  sync.Mutex
	resetGen uint64
}

func NewSyncEngine(queue vins.Repository, remote client.Client, identity IdentityResolver, logger logging.Logger, cfg EngineConfig) *SyncEngine {
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = 10 * time.Second
	}
	return &SyncEngine{
		queue:    queue,
		remote:   remote,
		identity: identity,
		logger:   logger.With("module", "sync_engine"),
		cfg:      cfg,
	}
}

// State returns a snapshot of the current state.
func (e *SyncEngine) State() SyncState {
	return e.hub.get()
}

// Subscribe delivers the current state followed by every change. The
// returned func unsubscribes and closes the channel.
func (e *SyncEngine) Subscribe() (<-chan SyncState, func()) {
	return e.hub.subscribe()
}

// Running reports whether a run is in flight.
func (e *SyncEngine) Running() bool {
	return e.running.Load()
}

// SetOnline records a debounced connectivity transition.
func (e *SyncEngine) SetOnline(online bool) {
	c := Offline
	if online {
		c = Online
	}
	e.hub.update(func(s *SyncState) { s.Connectivity = c })
}

// RefreshPending re-reads the unsynced count from the queue.
func (e *SyncEngine) RefreshPending(ctx context.Context) error {
	n, err := e.queue.Count(ctx)
	if err != nil {
		return err
	}
	e.hub.update(func(s *SyncState) { s.PendingCount = n })
	return nil
}

// Trigger starts a run in the background. Errors are logged.
func (e *SyncEngine) Trigger(ctx context.Context) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		res, err := e.SyncNow(ctx)
		if err != nil {
			e.logger.Warn(ctx, "triggered sync failed", "error", err)
			return
		}
		if res.Coalesced {
			e.logger.Debug(ctx, "triggered sync coalesced into running batch")
		}
	}()
}

// Wait blocks until every run started by Trigger has returned.
func (e *SyncEngine) Wait() {
	e.wg.Wait()
}

// RunPeriodic triggers a run every interval while online, until ctx is done.
func (e *SyncEngine) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.State().Connectivity != Online {
				continue
			}
			if _, err := e.SyncNow(ctx); err != nil {
				e.logger.Warn(ctx, "periodic sync failed", "error", err)
			}
		}
	}
}

// SyncNow runs one batch.
//
// It fails only when the remote store cannot be reached at all (offline, or
// the reachability probe at batch start fails) or the queue cannot be read.
// With no resolved identity it is a successful no-op.
func (e *SyncEngine) SyncNow(ctx context.Context) (SyncResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return SyncResult{Coalesced: true}, nil
	}
	defer e.running.Store(false)

	if e.State().Connectivity != Online {
		err := fmt.Errorf("%w: offline", common.ErrUnavailable)
		e.finish(PhaseFailed, err)
		return SyncResult{}, err
	}

	id, err := e.identity.Resolve(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoIdentity) {
			e.logger.Info(ctx, "no identity resolved, sync skipped", "reason", err)
			e.finish(PhaseSucceeded, nil)
			return SyncResult{Skipped: true, Pending: e.State().PendingCount}, nil
		}
		e.finish(PhaseFailed, err)
		return SyncResult{}, fmt.Errorf("resolve identity: %w", err)
	}

	e.setPhase(PhaseSyncing)

	if err := e.ping(ctx); err != nil {
		err = fmt.Errorf("%w: %w", common.ErrUnavailable, err)
		e.finish(PhaseFailed, err)
		return SyncResult{}, err
	}

	batch, err := e.queue.ListUnsynced(ctx)
	if err != nil {
		e.finish(PhaseFailed, err)
		return SyncResult{}, err
	}

	e.logger.Info(ctx, "sync started", "batch", len(batch))

	var res SyncResult
	for _, rec := range batch {
		if err := ctx.Err(); err != nil {
			e.finish(PhaseFailed, err)
			_ = e.RefreshPending(context.WithoutCancel(ctx))
			res.Pending = e.State().PendingCount
			return res, err
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.RemoteTimeout)
		_, err := e.remote.InsertVehicle(callCtx, rec.VIN, id.OwnerID, rec.CapturedAt)
		cancel()
		if err != nil {
			res.Failed++
			e.logger.Warn(ctx, "record not synced", "local_id", rec.LocalID, "vin", rec.VIN,
				"error", fmt.Errorf("%w: %w", common.ErrRemoteAppend, err))
			continue
		}

		// The remote already holds the row; record that even if ctx is gone.
		if err := e.queue.MarkSynced(context.WithoutCancel(ctx), rec.LocalID); err != nil {
			res.Failed++
			e.logger.Error(ctx, "record appended remotely but not marked synced, it will be sent again",
				"local_id", rec.LocalID, "vin", rec.VIN, "error", err)
			continue
		}
		res.Synced++
	}

	if err := e.RefreshPending(ctx); err != nil {
		e.logger.Warn(ctx, "failed to refresh pending count", "error", err)
	}
	res.Pending = e.State().PendingCount

	e.finish(PhaseSucceeded, nil)
	e.logger.Info(ctx, "sync finished", "synced", res.Synced, "failed", res.Failed, "pending", res.Pending)

	return res, nil
}

func (e *SyncEngine) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RemoteTimeout)
	defer cancel()
	return e.remote.Ping(ctx)
}

func (e *SyncEngine) setPhase(p Phase) {
	e.resetMu.Lock()
	e.resetGen++
	e.resetMu.Unlock()

	e.hub.update(func(s *SyncState) {
		s.Phase = p
		s.LastError = ""
	})
}

// finish moves to a terminal phase and arms the reset to Idle.
func (e *SyncEngine) finish(p Phase, err error) {
	e.resetMu.Lock()
	e.resetGen++
	gen := e.resetGen
	e.resetMu.Unlock()

	e.hub.update(func(s *SyncState) {
		s.Phase = p
		s.LastError = ""
		if err != nil {
			s.LastError = err.Error()
		}
	})

	if e.cfg.StatusResetDelay <= 0 {
		return
	}
	time.AfterFunc(e.cfg.StatusResetDelay, func() {
		e.resetMu.Lock()
		defer e.resetMu.Unlock()
		if e.resetGen != gen {
			return
		}
		e.hub.update(func(s *SyncState) {
			s.Phase = PhaseIdle
			s.LastError = ""
		})
	})
}
