package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/client/client"
	"github.com/dmitrijs2005/vinscanner/internal/client/repositories/vins"
	"github.com/dmitrijs2005/vinscanner/internal/common"
	"github.com/dmitrijs2005/vinscanner/internal/logging"
	"github.com/dmitrijs2005/vinscanner/internal/vin"
)

// Path tells where a submitted VIN went.
type Path string

const (
	PathRemote Path = "remote"
	PathQueued Path = "queued"
)

type SubmitResult struct {
	VIN      string `json:"vin"`
	Path     Path   `json:"path"`
	LocalID  int64  `json:"local_id,omitempty"`
	RemoteID string `json:"remote_id,omitempty"`
}

// Submitter accepts a validated VIN from any capture flow.
type Submitter interface {
	Submit(ctx context.Context, vin string) (SubmitResult, error)
}

// SubmitService appends straight to the remote store when online with a
// resolved identity, and enqueues locally otherwise. A direct append that
// fails because the store is unreachable or refuses the token falls back to
// the queue, so an accepted VIN is never dropped.
type SubmitService struct {
	engine   *SyncEngine
	queue    vins.Repository
	remote   client.Client
	identity IdentityResolver
	logger   logging.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewSubmitService(engine *SyncEngine, queue vins.Repository, remote client.Client, identity IdentityResolver, logger logging.Logger, timeout time.Duration) *SubmitService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SubmitService{
		engine:   engine,
		queue:    queue,
		remote:   remote,
		identity: identity,
		logger:   logger.With("module", "submit"),
		timeout:  timeout,
		now:      time.Now,
	}
}

func (s *SubmitService) Submit(ctx context.Context, raw string) (SubmitResult, error) {
	v, err := vin.Validate(raw)
	if err != nil {
		return SubmitResult{}, err
	}

	if s.engine.State().Connectivity == Online {
		res, err := s.submitRemote(ctx, v)
		switch {
		case err == nil:
			return res, nil
		case errors.Is(err, common.ErrNoIdentity),
			errors.Is(err, client.ErrUnavailable),
			errors.Is(err, client.ErrUnauthorized):
			s.logger.Info(ctx, "direct submit not possible, queueing", "vin", v, "reason", err)
		default:
			return SubmitResult{}, err
		}
	}

	return s.enqueue(ctx, v)
}

func (s *SubmitService) submitRemote(ctx context.Context, v string) (SubmitResult, error) {
	id, err := s.identity.Resolve(ctx)
	if err != nil {
		return SubmitResult{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rv, err := s.remote.InsertVehicle(callCtx, v, id.OwnerID, s.now().UTC())
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %w", common.ErrRemoteAppend, err)
	}

	s.logger.Info(ctx, "VIN appended to remote store", "vin", v, "remote_id", rv.RemoteID)
	return SubmitResult{VIN: v, Path: PathRemote, RemoteID: rv.RemoteID}, nil
}

func (s *SubmitService) enqueue(ctx context.Context, v string) (SubmitResult, error) {
	id, err := s.queue.Enqueue(ctx, v)
	if err != nil {
		return SubmitResult{}, err
	}

	if err := s.engine.RefreshPending(ctx); err != nil {
		s.logger.Warn(ctx, "failed to refresh pending count", "error", err)
	}

	s.logger.Info(ctx, "VIN queued for sync", "vin", v, "local_id", id)
	return SubmitResult{VIN: v, Path: PathQueued, LocalID: id}, nil
}
