// Package users stores accounts for the identity provider.
package users

import (
	"context"

	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

// Repository persists users. Lookups return common.ErrorNotFound when the
// user is absent; Create returns common.ErrConflict for a taken email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
