package users

import (
	"context"

	"github.com/dkravetz/sixtyfix/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
}
