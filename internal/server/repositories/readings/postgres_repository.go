package readings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/astroadvisor/internal/common"
	"github.com/dmitrijs2005/astroadvisor/internal/dbx"
	"github.com/dmitrijs2005/astroadvisor/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, reading *models.Reading) (*models.Reading, error) {

	query :=
		`INSERT INTO readings (id, user_id, name, birth_date, birth_time, location, advice)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		reading.ID, reading.UserID, reading.Name, reading.BirthDate,
		reading.BirthTime, reading.Location, reading.Advice).
		Scan(&reading.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reading, nil
}

func (r *PostgresRepository) GetByIDForUser(ctx context.Context, id string, userID string) (*models.Reading, error) {
	query :=
		`SELECT id, user_id, name, birth_date, birth_time, location, advice, created_at
		 FROM readings
		 WHERE id = $1 AND user_id = $2
		 `

	reading := &models.Reading{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&reading.ID, &reading.UserID, &reading.Name, &reading.BirthDate,
			&reading.BirthTime, &reading.Location, &reading.Advice, &reading.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reading, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Reading, error) {
	query :=
		`SELECT id, user_id, name, birth_date, birth_time, location, advice, created_at
		 FROM readings
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 OFFSET $2 LIMIT $3
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Reading, 0)
	for rows.Next() {
		reading := &models.Reading{}
		if err := rows.Scan(&reading.ID, &reading.UserID, &reading.Name, &reading.BirthDate,
			&reading.BirthTime, &reading.Location, &reading.Advice, &reading.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `DELETE FROM readings WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
