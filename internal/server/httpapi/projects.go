package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/dmitrijs2005/sharelink/internal/server/services"
)

func projectRef(r *http.Request) services.ProjectRef {
	return services.ProjectRef{
		Name:       r.PathValue("name"),
		OwnerEmail: r.URL.Query().Get("owner"),
	}
}

func (s *Server) handleCreateOrGetLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectName string `json:"projectName"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	link, linkID, err := s.projects.CreateOrGetLink(r.Context(), req.ProjectName, userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"link": link, "linkId": linkID})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.projects.Create(r.Context(), req.Name, userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.projects.Summarize(r.Context(), p, models.RoleOwner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sum)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.projects.ListForUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleProjectGet dispatches GET /projects/{name}/{resource}.
func (s *Server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	name, resource := r.PathValue("name"), r.PathValue("resource")

	if name == "link" {
		s.handleResolveLink(w, s.optionalUser(r), resource)
		return
	}

	switch resource {
	case "permissions":
		s.withAuth(s.handleGetPermissions).ServeHTTP(w, r)
	case "files":
		s.withAuth(s.handleGetFile).ServeHTTP(w, r)
	default:
		writeMessage(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleResolveLink(w http.ResponseWriter, r *http.Request, linkID string) {
	sum, err := s.projects.ResolveLink(r.Context(), linkID, userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	view, err := s.projects.GetPermissions(r.Context(), r.PathValue("name"), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type permissionChange struct {
	Permissions *struct {
		Email      *string `json:"email"`
		Permission string  `json:"permission"`
	} `json:"permissions"`
}

func (s *Server) handleSetPermissions(w http.ResponseWriter, r *http.Request) {
	var req permissionChange
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Permissions == nil {
		writeMessage(w, http.StatusBadRequest, "permissions are required")
		return
	}

	ctx, userID, name := r.Context(), userIDFrom(r.Context()), r.PathValue("name")
	err := s.projects.SetPermissions(ctx, name, userID, services.PermissionTarget{
		Email:      req.Permissions.Email,
		Permission: models.PermissionLevel(req.Permissions.Permission),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.projects.GetPermissions(ctx, name, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleRevokePermission removes the grant of ?email=, or turns public
// access off when email is absent.
func (s *Server) handleRevokePermission(w http.ResponseWriter, r *http.Request) {
	ctx, userID, name := r.Context(), userIDFrom(r.Context()), r.PathValue("name")

	if err := s.projects.RevokePermission(ctx, name, userID, r.URL.Query().Get("email")); err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.projects.GetPermissions(ctx, name, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
