package client

import (
	"context"
	"net/http"
	"net/url"
)

// Share creates the project when needed and returns its share link and
// link ID.
func (c *Client) Share(ctx context.Context, s Session, name string) (string, string, error) {
	var resp struct {
		Link   string `json:"link"`
		LinkID string `json:"linkId"`
	}
	if err := c.do(ctx, http.MethodPost, "/projects/link", nil, s, map[string]string{"projectName": name}, &resp); err != nil {
		return "", "", err
	}
	return resp.Link, resp.LinkID, nil
}

func (c *Client) CreateProject(ctx context.Context, s Session, name string) (*ProjectSummary, error) {
	var p ProjectSummary
	if err := c.do(ctx, http.MethodPost, "/projects", nil, s, map[string]string{"name": name}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListProjects(ctx context.Context, s Session) ([]ProjectSummary, error) {
	var list []ProjectSummary
	if err := c.do(ctx, http.MethodGet, "/projects", nil, s, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ResolveLink works without a session; with one the summary carries the
// caller's role.
func (c *Client) ResolveLink(ctx context.Context, s Session, linkID string) (*ProjectSummary, error) {
	var p ProjectSummary
	if err := c.do(ctx, http.MethodGet, "/projects/link/"+url.PathEscape(linkID), nil, s, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetPermissions(ctx context.Context, s Session, name string) (*Permissions, error) {
	var p Permissions
	if err := c.do(ctx, http.MethodGet, projectPath(name, "permissions"), nil, s, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPermissions grants permission to email, or sets the public policy when
// email is nil.
func (c *Client) SetPermissions(ctx context.Context, s Session, name string, email *string, permission string) (*Permissions, error) {
	body := map[string]any{
		"permissions": map[string]any{"email": email, "permission": permission},
	}
	var p Permissions
	if err := c.do(ctx, http.MethodPut, projectPath(name, "permissions"), nil, s, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RevokePermission removes the grant of email, or disables public access
// when email is empty.
func (c *Client) RevokePermission(ctx context.Context, s Session, name, email string) (*Permissions, error) {
	q := url.Values{}
	if email != "" {
		q.Set("email", email)
	}
	var p Permissions
	if err := c.do(ctx, http.MethodDelete, projectPath(name, "permissions"), q, s, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
