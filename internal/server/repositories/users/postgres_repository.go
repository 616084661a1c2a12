package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/astroadvisor/internal/common"
	"github.com/dmitrijs2005/astroadvisor/internal/dbx"
	"github.com/dmitrijs2005/astroadvisor/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, username, password_hash, birth_date, birth_time, location)
         VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, is_active, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.UserName, user.PasswordHash,
		user.BirthDate, user.BirthTime, user.Location).
		Scan(&user.ID, &user.IsActive, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, username, password_hash, birth_date, birth_time, location, is_active, created_at
		 FROM users
		 WHERE email = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, email, username, password_hash, birth_date, birth_time, location, is_active, created_at
		 FROM users
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// Update applies the non-nil fields of upd and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	query :=
		`UPDATE users
		 SET username = COALESCE($2, username),
		     birth_date = COALESCE($3, birth_date),
		     birth_time = COALESCE($4, birth_time),
		     location = COALESCE($5, location)
		 WHERE id = $1
		 RETURNING id, email, username, password_hash, birth_date, birth_time, location, is_active, created_at
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id,
		upd.UserName, upd.BirthDate, upd.BirthTime, upd.Location))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.UserName, &user.PasswordHash,
		&user.BirthDate, &user.BirthTime, &user.Location, &user.IsActive, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
