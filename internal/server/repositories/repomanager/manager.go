package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vinscanner/internal/dbx"
	"github.com/dmitrijs2005/vinscanner/internal/server/repositories/vehicles"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Vehicles(db dbx.DBTX) vehicles.Repository
}
