package vehicles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vinscanner/internal/dbx"
	"github.com/dmitrijs2005/vinscanner/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	query :=
		`INSERT INTO vehicles (id, vin, owner_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, v.ID, v.VIN, v.OwnerID, v.CreatedAt).Scan(&v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

// ListByOwner returns the owner's vehicles, newest first, skipping the first
// offset rows. limit <= 0 returns all of them.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Vehicle, error) {
	query :=
		`SELECT id, vin, owner_id, created_at FROM vehicles
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, id`
	args := []any{ownerID}
	if limit > 0 {
		query += `
		 LIMIT $2`
		args = append(args, limit)
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(`
		 OFFSET $%d`, len(args))
	}

	list, err := dbx.QueryAll(ctx, r.db, func(rows *sql.Rows) (*models.Vehicle, error) {
		v := &models.Vehicle{}
		err := rows.Scan(&v.ID, &v.VIN, &v.OwnerID, &v.CreatedAt)
		return v, err
	}, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}
