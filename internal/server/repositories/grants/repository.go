// Package grants stores per-user permission grants on projects.
package grants

import (
	"context"

	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

// Repository persists grants; there is at most one grant per (project, user).
type Repository interface {
	// Upsert creates the grant or replaces its permission level.
	Upsert(ctx context.Context, g *models.Grant) error
	Get(ctx context.Context, projectID, userID string) (*models.Grant, error)
	// Delete returns common.ErrorNotFound when there was nothing to revoke.
	Delete(ctx context.Context, projectID, userID string) error
	// ListByProject includes the grantee email.
	ListByProject(ctx context.Context, projectID string) ([]*models.Grant, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Grant, error)
}
