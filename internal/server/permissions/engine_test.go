package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGrants struct {
	grants map[string]models.PermissionLevel
	err    error
}

func (f *fakeGrants) Get(ctx context.Context, projectID, userID string) (*models.Grant, error) {
	if f.err != nil {
		return nil, f.err
	}
	lvl, ok := f.grants[projectID+"/"+userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Grant{ProjectID: projectID, UserID: userID, Permission: lvl}, nil
}

var ops = []models.Operation{models.OpRead, models.OpWrite}

func TestAuthorize_OwnerAlwaysAllowed(t *testing.T) {
	e := NewEngine(&fakeGrants{})
	for _, public := range []bool{false, true} {
		for _, lvl := range []models.PermissionLevel{models.PermissionRead, models.PermissionWrite, models.PermissionReadWrite} {
			p := &models.Project{ID: "p", OwnerID: "alice", PublicAccess: public, PublicPermission: lvl}
			for _, op := range ops {
				assert.NoError(t, e.Authorize(context.Background(), p, "alice", op))
			}
		}
	}
}

func TestAuthorize_GrantDecidesByCapability(t *testing.T) {
	tests := []struct {
		level     models.PermissionLevel
		op        models.Operation
		wantAllow bool
	}{
		{models.PermissionRead, models.OpRead, true},
		{models.PermissionRead, models.OpWrite, false},
		{models.PermissionWrite, models.OpRead, false},
		{models.PermissionWrite, models.OpWrite, true},
		{models.PermissionReadWrite, models.OpRead, true},
		{models.PermissionReadWrite, models.OpWrite, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.level)+"_"+string(tt.op), func(t *testing.T) {
			e := NewEngine(&fakeGrants{grants: map[string]models.PermissionLevel{"p/bob": tt.level}})
			// public read-write must not widen an explicit grant
			p := &models.Project{ID: "p", OwnerID: "alice", PublicAccess: true, PublicPermission: models.PermissionReadWrite}

			err := e.Authorize(context.Background(), p, "bob", tt.op)
			if tt.wantAllow {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, common.ErrForbidden)
			assert.Contains(t, err.Error(), ReasonInsufficientAccess)
		})
	}
}

func TestAuthorize_PublicPolicy(t *testing.T) {
	e := NewEngine(&fakeGrants{})
	p := &models.Project{ID: "p", OwnerID: "alice", PublicAccess: true, PublicPermission: models.PermissionRead}

	assert.NoError(t, e.Authorize(context.Background(), p, "carol", models.OpRead))

	err := e.Authorize(context.Background(), p, "carol", models.OpWrite)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Contains(t, err.Error(), ReasonInsufficientAccess)
}

func TestAuthorize_NoPathDenied(t *testing.T) {
	e := NewEngine(&fakeGrants{})
	p := &models.Project{ID: "p", OwnerID: "alice", PublicPermission: models.PermissionReadWrite}

	for _, op := range ops {
		err := e.Authorize(context.Background(), p, "carol", op)
		require.ErrorIs(t, err, common.ErrForbidden)
		assert.Contains(t, err.Error(), ReasonAccessDenied)
	}
}

func TestAuthorize_RevokedGrantFallsBackToPublic(t *testing.T) {
	g := &fakeGrants{grants: map[string]models.PermissionLevel{"p/bob": models.PermissionReadWrite}}
	e := NewEngine(g)
	p := &models.Project{ID: "p", OwnerID: "alice", PublicAccess: true, PublicPermission: models.PermissionRead}

	require.NoError(t, e.Authorize(context.Background(), p, "bob", models.OpWrite))

	delete(g.grants, "p/bob")
	require.ErrorIs(t, e.Authorize(context.Background(), p, "bob", models.OpWrite), common.ErrForbidden)
	require.NoError(t, e.Authorize(context.Background(), p, "bob", models.OpRead))

	p.PublicAccess = false
	require.ErrorIs(t, e.Authorize(context.Background(), p, "bob", models.OpRead), common.ErrForbidden)
}

func TestAuthorize_LookupErrorIsNotForbidden(t *testing.T) {
	boom := errors.New("db down")
	e := NewEngine(&fakeGrants{err: boom})
	p := &models.Project{ID: "p", OwnerID: "alice"}

	err := e.Authorize(context.Background(), p, "bob", models.OpRead)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrForbidden)
}

type denyAll struct{}

func (denyAll) Name() string { return "deny-all" }

func (denyAll) Evaluate(ctx context.Context, p *models.Project, actorID string, op models.Operation) (Decision, error) {
	return deny("frozen"), nil
}

func TestWith_AppendsWithoutChangingOriginal(t *testing.T) {
	base := NewEngine(&fakeGrants{})
	extended := base.With(denyAll{})
	p := &models.Project{ID: "p", OwnerID: "alice"}

	assert.NoError(t, extended.Authorize(context.Background(), p, "alice", models.OpWrite))

	err := extended.Authorize(context.Background(), p, "carol", models.OpRead)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Contains(t, err.Error(), "frozen")

	err = base.Authorize(context.Background(), p, "carol", models.OpRead)
	assert.Contains(t, err.Error(), ReasonAccessDenied)
}

func TestRole(t *testing.T) {
	e := NewEngine(&fakeGrants{grants: map[string]models.PermissionLevel{"p/bob": models.PermissionRead}})
	p := &models.Project{ID: "p", OwnerID: "alice", PublicAccess: true, PublicPermission: models.PermissionRead}
	ctx := context.Background()

	for actor, want := range map[string]models.Role{"alice": models.RoleOwner, "bob": models.RoleGrant, "carol": models.RolePublic} {
		got, err := e.Role(ctx, p, actor)
		require.NoError(t, err)
		assert.Equal(t, want, got, actor)
	}

	p.PublicAccess = false
	got, err := e.Role(ctx, p, "carol")
	require.NoError(t, err)
	assert.Empty(t, got)
}
