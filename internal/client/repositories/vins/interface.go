package vins

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/client/models"
)

type Repository interface {
	Enqueue(ctx context.Context, vin string) (int64, error)
	ListUnsynced(ctx context.Context) ([]*models.VinRecord, error)
	MarkSynced(ctx context.Context, localID int64) error
	Count(ctx context.Context) (int, error)

	ListAll(ctx context.Context) ([]*models.VinRecord, error)
	Delete(ctx context.Context, localID int64) error
	PurgeSynced(ctx context.Context, before time.Time) (int64, error)
}
