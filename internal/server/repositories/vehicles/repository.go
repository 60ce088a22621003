package vehicles

import (
	"context"

	"github.com/dmitrijs2005/vinscanner/internal/server/models"
)

// Repository is the append-only vehicle store. There is no update and no
// uniqueness on VIN: appending the same VIN twice yields two rows.
type Repository interface {
	Insert(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Vehicle, error)
}
