package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/client/models"
)

// Client is the remote vehicle store as seen from the field client.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	InsertVehicle(ctx context.Context, vin, ownerID string, createdAt time.Time) (*models.RemoteVehicle, error)
	ListVehicles(ctx context.Context, ownerID string, limit, offset int) ([]*models.RemoteVehicle, error)
}

// TokenSource yields the access token attached to outgoing calls. An empty
// token sends the call without one.
type TokenSource func(ctx context.Context) (string, error)
