// Package permissions decides whether an actor may read or write a project.
//
// Decisions come from an ordered chain of policies. Each policy either
// allows, denies with a reason, or abstains and lets the next one decide.
// A chain where everybody abstains denies with "access denied".
package permissions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
)

// Effect is the outcome of a single policy.
type Effect int

const (
	Abstain Effect = iota
	Allow
	Deny
)

const (
	ReasonAccessDenied       = "access denied"
	ReasonInsufficientAccess = "insufficient permission"
)

// Decision is what a policy returns. Reason is only meaningful for Deny.
type Decision struct {
	Effect Effect
	Reason string
}

func allow() Decision { return Decision{Effect: Allow} }

func abstain() Decision { return Decision{Effect: Abstain} }

func deny(reason string) Decision { return Decision{Effect: Deny, Reason: reason} }

func decide(ok bool) Decision {
	if ok {
		return allow()
	}
	return deny(ReasonInsufficientAccess)
}

// Policy is one tier of the authorization chain.
type Policy interface {
	Name() string
	Evaluate(ctx context.Context, p *models.Project, actorID string, op models.Operation) (Decision, error)
}

// GrantLookup is the part of the grants repository the engine needs.
type GrantLookup interface {
	Get(ctx context.Context, projectID, userID string) (*models.Grant, error)
}

type Engine struct {
	policies []Policy
	grants   GrantLookup
}

// NewEngine returns the default chain: owner, per-user grant, public policy.
func NewEngine(grants GrantLookup) *Engine {
	return &Engine{
		policies: []Policy{
			OwnerPolicy{},
			GrantPolicy{Grants: grants},
			PublicPolicy{},
		},
		grants: grants,
	}
}

// With returns a copy of the engine with extra policies appended after the
// existing ones.
func (e *Engine) With(policies ...Policy) *Engine {
	chain := make([]Policy, 0, len(e.policies)+len(policies))
	chain = append(chain, e.policies...)
	chain = append(chain, policies...)
	return &Engine{policies: chain, grants: e.grants}
}

// Authorize returns nil when op is allowed and an error wrapping
// common.ErrForbidden otherwise. Lookup failures are returned as is.
func (e *Engine) Authorize(ctx context.Context, p *models.Project, actorID string, op models.Operation) error {
	for _, policy := range e.policies {
		d, err := policy.Evaluate(ctx, p, actorID, op)
		if err != nil {
			return fmt.Errorf("policy %s: %w", policy.Name(), err)
		}
		switch d.Effect {
		case Allow:
			return nil
		case Deny:
			return fmt.Errorf("%w: %s", common.ErrForbidden, d.Reason)
		}
	}
	return fmt.Errorf("%w: %s", common.ErrForbidden, ReasonAccessDenied)
}

// Role reports how actorID relates to the project for listings, or "" when
// it has no access path at all.
func (e *Engine) Role(ctx context.Context, p *models.Project, actorID string) (models.Role, error) {
	if p.OwnerID == actorID {
		return models.RoleOwner, nil
	}
	g, err := GrantPolicy{Grants: e.grants}.lookup(ctx, p, actorID)
	if err != nil {
		return "", err
	}
	if g != nil {
		return models.RoleGrant, nil
	}
	if p.PublicAccess {
		return models.RolePublic, nil
	}
	return "", nil
}
