// Package services contains server-side business logic. VehicleService
// appends validated VINs to the store on behalf of an owner and lists an
// owner's inventory.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vinscanner/internal/common"
	"github.com/dmitrijs2005/vinscanner/internal/server/models"
	"github.com/dmitrijs2005/vinscanner/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vinscanner/internal/vin"
)

// MaxListLimit caps a single listing.
const MaxListLimit = 1000

type VehicleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	newID       func() string
}

func NewVehicleService(db *sql.DB, m repomanager.RepositoryManager) *VehicleService {
	return &VehicleService{
		db:          db,
		repomanager: m,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// Insert validates vin and appends it for ownerID. A zero createdAt is
// replaced by the current time. Appending is not idempotent.
func (s *VehicleService) Insert(ctx context.Context, ownerID, raw string, createdAt time.Time) (*models.Vehicle, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", common.ErrInvalidArgument)
	}

	v, err := vin.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidArgument, err)
	}

	if createdAt.IsZero() {
		createdAt = s.now()
	}

	vehicle := &models.Vehicle{
		ID:        s.newID(),
		VIN:       v,
		OwnerID:   ownerID,
		CreatedAt: createdAt.UTC(),
	}

	return s.repomanager.Vehicles(s.db).Insert(ctx, vehicle)
}

// List returns a page of ownerID's vehicles, newest first, starting offset
// rows in. limit <= 0 means as many as MaxListLimit allows; callers page with
// offset to read past it.
func (s *VehicleService) List(ctx context.Context, ownerID string, limit, offset int) ([]*models.Vehicle, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", common.ErrInvalidArgument)
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repomanager.Vehicles(s.db).ListByOwner(ctx, ownerID, limit, offset)
}
