package readings

import (
	"context"

	"github.com/dmitrijs2005/astroadvisor/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, reading *models.Reading) (*models.Reading, error)
	// GetByIDForUser returns the reading only when it belongs to userID.
	// A reading that exists but is owned by someone else is reported as
	// not found, exactly like an absent one.
	GetByIDForUser(ctx context.Context, id string, userID string) (*models.Reading, error)
	// ListByUser returns the user's readings newest first.
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Reading, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}
