package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/astroadvisor/internal/dbx"
	"github.com/dmitrijs2005/astroadvisor/internal/server/migrations"
	"github.com/dmitrijs2005/astroadvisor/internal/server/repositories/readings"
	"github.com/dmitrijs2005/astroadvisor/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Readings(db dbx.DBTX) readings.Repository {
	return readings.NewPostgresRepository(db)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the given database.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}
