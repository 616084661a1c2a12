package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/astroadvisor/internal/common"
	"github.com/dmitrijs2005/astroadvisor/internal/server/advice"
	"github.com/dmitrijs2005/astroadvisor/internal/server/models"
	"github.com/dmitrijs2005/astroadvisor/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ReadingService generates advice through the injected Generator and persists
// the resulting readings. A reading row is written only after the external
// generation call has succeeded.
type ReadingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	generator   advice.Generator
}

func NewReadingService(db *sql.DB, m repomanager.RepositoryManager, g advice.Generator) *ReadingService {
	return &ReadingService{db: db, repomanager: m, generator: g}
}

// CreateForUser generates and stores a reading owned by userID.
func (s *ReadingService) CreateForUser(ctx context.Context, userID string, in advice.Input) (*models.Reading, error) {
	return s.create(ctx, &userID, in)
}

// CreateQuick generates and stores an anonymous reading. It never binds an
// owner, regardless of any credentials the caller presented.
func (s *ReadingService) CreateQuick(ctx context.Context, in advice.Input) (*models.Reading, error) {
	return s.create(ctx, nil, in)
}

func (s *ReadingService) create(ctx context.Context, userID *string, in advice.Input) (*models.Reading, error) {
	if in.Name == "" || in.BirthDate == "" || in.Location == "" {
		return nil, fmt.Errorf("%w: missing required field", common.ErrorValidation)
	}

	text, err := s.generator.Generate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAdviceGeneration, err)
	}

	reading := &models.Reading{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		BirthDate: in.BirthDate,
		BirthTime: in.BirthTime,
		Location:  in.Location,
		Advice:    text,
	}

	r, err := s.repomanager.Readings(s.db).Create(ctx, reading)
	if err != nil {
		return nil, fmt.Errorf("error storing reading: %w", err)
	}
	return r, nil
}

// List returns a page of the user's readings, newest first.
func (s *ReadingService) List(ctx context.Context, userID string, skip, limit int) ([]*models.Reading, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repomanager.Readings(s.db).ListByUser(ctx, userID, skip, limit)
}

// Get returns the reading only if it is owned by userID; otherwise
// common.ErrorNotFound, whether the id exists or not.
func (s *ReadingService) Get(ctx context.Context, userID string, id string) (*models.Reading, error) {
	return s.repomanager.Readings(s.db).GetByIDForUser(ctx, id, userID)
}
