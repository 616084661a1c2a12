// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login (issuing JWTs), profile
// reads/updates, and the transactional account-delete cascade.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/dmitrijs2005/astroadvisor/internal/common"
	"github.com/dmitrijs2005/astroadvisor/internal/dbx"
	"github.com/dmitrijs2005/astroadvisor/internal/server/auth"
	"github.com/dmitrijs2005/astroadvisor/internal/server/config"
	"github.com/dmitrijs2005/astroadvisor/internal/server/models"
	"github.com/dmitrijs2005/astroadvisor/internal/server/repositories/repomanager"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	UserName  string
	Password  string
	BirthDate string
	BirthTime string
	Location  string
}

// UserService provides account-related operations.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register validates the payload, hashes the password and creates the user.
// A malformed email is rejected before the repository is touched; an email
// already registered yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email format", common.ErrorValidation)
	}
	if in.UserName == "" || in.Password == "" || in.BirthDate == "" || in.Location == "" {
		return nil, fmt.Errorf("%w: missing required field", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Email:        in.Email,
		UserName:     in.UserName,
		PasswordHash: hash,
		BirthDate:    in.BirthDate,
		BirthTime:    in.BirthTime,
		Location:     in.Location,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and, on success, returns a signed access
// token bound to the account email. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// GetByEmail returns the account for the given email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, email)
}

// Update applies a typed partial update to the user's mutable profile fields.
func (s *UserService) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return u, nil
}

// Delete removes the user's readings and then the user row inside one
// transaction, so a failure leaves no partial state behind.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Readings(tx).DeleteAllForUser(ctx, id); err != nil {
			return fmt.Errorf("error deleting readings: %w", err)
		}
		if err := s.repomanager.Users(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		return nil
	})
}
