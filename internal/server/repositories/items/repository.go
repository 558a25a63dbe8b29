package items

import (
	"context"

	"github.com/dkravetz/sixtyfix/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	GetByIDAndOwner(ctx context.Context, id, userID string) (*models.Item, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Item, error)
	DeleteByIDAndOwner(ctx context.Context, id, userID string) error
}
