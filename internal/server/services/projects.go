package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/logging"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/dmitrijs2005/sharelink/internal/server/permissions"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ProjectRef names a project from a caller's point of view. OwnerEmail is
// optional and disambiguates projects with the same name.
type ProjectRef struct {
	Name       string
	OwnerEmail string
}

// ProjectSummary is the listing view of a project.
type ProjectSummary struct {
	Name             string                 `json:"name"`
	Owner            string                 `json:"owner,omitempty"`
	LinkID           string                 `json:"linkId,omitempty"`
	PublicAccess     bool                   `json:"publicAccess"`
	PublicPermission models.PermissionLevel `json:"publicPermission"`
	Role             models.Role            `json:"role,omitempty"`
}

// PermissionTarget is one permission change. A nil Email addresses the
// public policy.
type PermissionTarget struct {
	Email      *string
	Permission models.PermissionLevel
}

type GrantView struct {
	Email      string                 `json:"email"`
	Permission models.PermissionLevel `json:"permission"`
}

type PermissionsView struct {
	PublicAccess     bool                   `json:"publicAccess"`
	PublicPermission models.PermissionLevel `json:"publicPermission"`
	Grants           []GrantView            `json:"grants"`
}

// ProjectService is the project directory: it creates projects, hands out
// share links and manages who may access them.
type ProjectService struct {
	repomanager repomanager.RepositoryManager
	engine      *permissions.Engine
	linkBaseURL string
	log         logging.Logger
}

func NewProjectService(m repomanager.RepositoryManager, engine *permissions.Engine, linkBaseURL string, log logging.Logger) *ProjectService {
	return &ProjectService{
		repomanager: m,
		engine:      engine,
		linkBaseURL: strings.TrimRight(linkBaseURL, "/"),
		log:         log.With("module", "projects"),
	}
}

// reservedProjectName collides with the share link routes.
const reservedProjectName = "link"

func validateProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: project name is required", common.ErrorValidation)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("%w: project name must not contain slashes", common.ErrorValidation)
	}
	if name == reservedProjectName {
		return "", fmt.Errorf("%w: project name %q is reserved", common.ErrorValidation, name)
	}
	return name, nil
}

// Create makes an empty private project. The owner may hold only one
// project per name.
func (s *ProjectService) Create(ctx context.Context, name, ownerID string) (*models.Project, error) {
	name, err := validateProjectName(name)
	if err != nil {
		return nil, err
	}
	p, err := s.repomanager.Repositories().Projects.Create(ctx, &models.Project{
		Name:             name,
		OwnerID:          ownerID,
		PublicPermission: models.PermissionRead,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	s.log.Info(ctx, "project created", "project", p.ID, "name", name, "owner", ownerID)
	return p, nil
}

// GenerateLink returns the project's link ID, minting one on first call.
func (s *ProjectService) GenerateLink(ctx context.Context, name, ownerID string) (string, error) {
	repo := s.repomanager.Repositories().Projects

	p, err := repo.GetByNameAndOwner(ctx, name, ownerID)
	if err != nil {
		return "", err
	}
	if p.HasLink() {
		return p.LinkID, nil
	}

	linkID, err := repo.SetLinkID(ctx, p.ID, uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("error storing link: %w", err)
	}
	return linkID, nil
}

// CreateOrGetLink creates the project when missing and returns its share
// URL together with the bare link ID.
func (s *ProjectService) CreateOrGetLink(ctx context.Context, name, ownerID string) (string, string, error) {
	name, err := validateProjectName(name)
	if err != nil {
		return "", "", err
	}
	if _, err := s.Create(ctx, name, ownerID); err != nil && !errors.Is(err, common.ErrConflict) {
		return "", "", err
	}

	linkID, err := s.GenerateLink(ctx, name, ownerID)
	if err != nil {
		return "", "", err
	}
	return s.linkBaseURL + "/" + linkID, linkID, nil
}

// ResolveLink finds the project behind a link. actorID may be empty. A
// caller with no access to the project only learns its name.
func (s *ProjectService) ResolveLink(ctx context.Context, linkID, actorID string) (*ProjectSummary, error) {
	p, err := s.repomanager.Repositories().Projects.GetByLinkID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	var role models.Role
	switch {
	case actorID != "":
		if role, err = s.engine.Role(ctx, p, actorID); err != nil {
			return nil, err
		}
	case p.PublicAccess:
		role = models.RolePublic
	}
	if role == "" {
		return &ProjectSummary{Name: p.Name, LinkID: p.LinkID}, nil
	}
	return s.Summarize(ctx, p, role)
}

// Summarize renders p for listings with the given caller role.
func (s *ProjectService) Summarize(ctx context.Context, p *models.Project, role models.Role) (*ProjectSummary, error) {
	owner, err := s.repomanager.Repositories().Users.GetByID(ctx, p.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("error loading project owner: %w", err)
	}
	return &ProjectSummary{
		Name:             p.Name,
		Owner:            owner.Email,
		LinkID:           p.LinkID,
		PublicAccess:     p.PublicAccess,
		PublicPermission: p.PublicPermission,
		Role:             role,
	}, nil
}

// SetPermissions applies one change on a project the caller owns. A project
// of the same name owned by someone else is reported as not found.
func (s *ProjectService) SetPermissions(ctx context.Context, name, ownerID string, target PermissionTarget) error {
	level, err := models.ParsePermissionLevel(string(target.Permission))
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	return s.repomanager.WithTx(ctx, func(ctx context.Context, r *repomanager.Repositories) error {
		p, err := r.Projects.GetByNameAndOwner(ctx, name, ownerID)
		if err != nil {
			return err
		}

		if target.Email == nil {
			if err := r.Projects.SetPublicAccess(ctx, p.ID, true, level); err != nil {
				return err
			}
			s.log.Info(ctx, "public access set", "project", p.ID, "permission", level)
			return nil
		}

		email, err := NormalizeEmail(*target.Email)
		if err != nil {
			return err
		}
		user, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: no user %s", common.ErrorNotFound, email)
			}
			return err
		}
		if user.ID == p.OwnerID {
			return fmt.Errorf("%w: the owner already has full access", common.ErrorValidation)
		}

		if err := r.Grants.Upsert(ctx, &models.Grant{
			ProjectID:  p.ID,
			UserID:     user.ID,
			Email:      user.Email,
			Permission: level,
		}); err != nil {
			return err
		}
		s.log.Info(ctx, "grant set", "project", p.ID, "user", user.ID, "permission", level)
		return nil
	})
}

// RevokePermission deletes the grant of email, or disables public access
// when email is empty.
func (s *ProjectService) RevokePermission(ctx context.Context, name, ownerID, email string) error {
	return s.repomanager.WithTx(ctx, func(ctx context.Context, r *repomanager.Repositories) error {
		p, err := r.Projects.GetByNameAndOwner(ctx, name, ownerID)
		if err != nil {
			return err
		}

		if email == "" {
			return r.Projects.SetPublicAccess(ctx, p.ID, false, p.PublicPermission)
		}

		email, err := NormalizeEmail(email)
		if err != nil {
			return err
		}
		user, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if err := r.Grants.Delete(ctx, p.ID, user.ID); err != nil {
			return err
		}
		s.log.Info(ctx, "grant revoked", "project", p.ID, "user", user.ID)
		return nil
	})
}

func (s *ProjectService) GetPermissions(ctx context.Context, name, ownerID string) (*PermissionsView, error) {
	r := s.repomanager.Repositories()

	p, err := r.Projects.GetByNameAndOwner(ctx, name, ownerID)
	if err != nil {
		return nil, err
	}
	grants, err := r.Grants.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	view := &PermissionsView{
		PublicAccess:     p.PublicAccess,
		PublicPermission: p.PublicPermission,
		Grants:           make([]GrantView, 0, len(grants)),
	}
	for _, g := range grants {
		view.Grants = append(view.Grants, GrantView{Email: g.Email, Permission: g.Permission})
	}
	return view, nil
}

// ListForUser returns the projects userID owns followed by the ones shared
// with them.
func (s *ProjectService) ListForUser(ctx context.Context, userID string) ([]*ProjectSummary, error) {
	r := s.repomanager.Repositories()

	owned, err := r.Projects.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	grants, err := r.Grants.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(owned)+len(grants))
	result := make([]*ProjectSummary, 0, len(owned)+len(grants))

	for _, p := range owned {
		seen[p.ID] = struct{}{}
		sum, err := s.Summarize(ctx, p, models.RoleOwner)
		if err != nil {
			return nil, err
		}
		result = append(result, sum)
	}

	for _, g := range grants {
		if _, ok := seen[g.ProjectID]; ok {
			continue
		}
		seen[g.ProjectID] = struct{}{}

		p, err := r.Projects.GetByID(ctx, g.ProjectID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return nil, err
		}
		sum, err := s.Summarize(ctx, p, models.RoleGrant)
		if err != nil {
			return nil, err
		}
		result = append(result, sum)
	}

	return result, nil
}

// ResolveForActor picks the project a file operation addresses. Preference
// order: the named owner's project, the caller's own, the oldest one shared
// with the caller, the oldest public one, and finally the oldest of that
// name, which authorization will then refuse.
func (s *ProjectService) ResolveForActor(ctx context.Context, ref ProjectRef, actorID string) (*models.Project, error) {
	r := s.repomanager.Repositories()

	if ref.OwnerEmail != "" {
		email, err := NormalizeEmail(ref.OwnerEmail)
		if err != nil {
			return nil, err
		}
		owner, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return r.Projects.GetByNameAndOwner(ctx, ref.Name, owner.ID)
	}

	p, err := r.Projects.GetByNameAndOwner(ctx, ref.Name, actorID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	candidates, err := r.Projects.ListByName(ctx, ref.Name)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, common.ErrorNotFound
	}

	for _, c := range candidates {
		_, err := r.Grants.Get(ctx, c.ID, actorID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
	}
	for _, c := range candidates {
		if c.PublicAccess {
			return c, nil
		}
	}
	return candidates[0], nil
}

// Open resolves ref for actorID and checks that op is allowed.
func (s *ProjectService) Open(ctx context.Context, ref ProjectRef, actorID string, op models.Operation) (*models.Project, error) {
	p, err := s.ResolveForActor(ctx, ref, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(ctx, p, actorID, op); err != nil {
		return nil, err
	}
	return p, nil
}
