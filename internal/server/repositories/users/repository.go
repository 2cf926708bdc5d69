// Package users implements the identity store.
package users

import (
	"context"

	"github.com/dmitrijs2005/policysignoff/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// List returns every user ordered by id.
	List(ctx context.Context) ([]*models.User, error)
	DeleteAll(ctx context.Context) error
}
