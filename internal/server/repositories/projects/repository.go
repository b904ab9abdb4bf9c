// Package projects stores projects, their share links and public policy.
package projects

import (
	"context"

	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

// Repository persists projects. Lookups return common.ErrorNotFound when
// nothing matches; Create returns common.ErrConflict when the owner already
// has a project with that name.
type Repository interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	GetByNameAndOwner(ctx context.Context, name, ownerID string) (*models.Project, error)
	GetByLinkID(ctx context.Context, linkID string) (*models.Project, error)

	// ListByName returns every project called name, oldest first.
	ListByName(ctx context.Context, name string) ([]*models.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error)

	// SetLinkID stores linkID unless the project already has one and
	// returns whichever link is in effect afterwards.
	SetLinkID(ctx context.Context, id, linkID string) (string, error)
	SetPublicAccess(ctx context.Context, id string, enabled bool, permission models.PermissionLevel) error
}
