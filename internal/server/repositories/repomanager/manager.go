// Package repomanager wires repository constructors to a concrete database
// backend and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/weathermood/weathermood/internal/dbx"
	"github.com/weathermood/weathermood/internal/server/repositories/records"
	"github.com/weathermood/weathermood/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run several repository calls inside one transaction via
// dbx.WithTx.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
