// Package repomanager bundles repository constructors behind one interface so
// services can obtain repositories bound to either a plain connection or a
// transaction, and run database migrations at startup.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/astroadvisor/internal/dbx"
	"github.com/dmitrijs2005/astroadvisor/internal/server/repositories/readings"
	"github.com/dmitrijs2005/astroadvisor/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Readings(db dbx.DBTX) readings.Repository
}
