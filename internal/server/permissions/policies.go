package permissions

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

// OwnerPolicy allows everything to the project owner.
type OwnerPolicy struct{}

func (OwnerPolicy) Name() string { return "owner" }

func (OwnerPolicy) Evaluate(ctx context.Context, p *models.Project, actorID string, op models.Operation) (Decision, error) {
	if actorID != "" && p.OwnerID == actorID {
		return allow(), nil
	}
	return abstain(), nil
}

// GrantPolicy decides by the actor's grant when one exists. An existing
// grant that lacks op denies even if the project is public.
type GrantPolicy struct {
	Grants GrantLookup
}

func (GrantPolicy) Name() string { return "grant" }

func (g GrantPolicy) Evaluate(ctx context.Context, p *models.Project, actorID string, op models.Operation) (Decision, error) {
	grant, err := g.lookup(ctx, p, actorID)
	if err != nil {
		return Decision{}, err
	}
	if grant == nil {
		return abstain(), nil
	}
	return decide(grant.Permission.Allows(op)), nil
}

func (g GrantPolicy) lookup(ctx context.Context, p *models.Project, actorID string) (*models.Grant, error) {
	if actorID == "" || g.Grants == nil {
		return nil, nil
	}
	grant, err := g.Grants.Get(ctx, p.ID, actorID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return grant, nil
}

// PublicPolicy applies the project-wide public permission.
type PublicPolicy struct{}

func (PublicPolicy) Name() string { return "public" }

func (PublicPolicy) Evaluate(ctx context.Context, p *models.Project, actorID string, op models.Operation) (Decision, error) {
	if !p.PublicAccess {
		return abstain(), nil
	}
	return decide(p.PublicPermission.Allows(op)), nil
}
