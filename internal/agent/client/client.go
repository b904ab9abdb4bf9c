// Package client talks to the sharelink HTTP API on behalf of the sync
// agent. Every call takes an explicit Session; the client itself holds no
// credentials.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/netx"
)

// Session is an authenticated identity.
type Session struct {
	Token  string
	UserID string
	Email  string
}

func (s Session) Valid() bool { return s.Token != "" }

// ProjectRef names a project. Owner is optional and picks between projects
// of the same name.
type ProjectRef struct {
	Name  string
	Owner string
}

type ProjectSummary struct {
	Name             string `json:"name"`
	Owner            string `json:"owner,omitempty"`
	LinkID           string `json:"linkId,omitempty"`
	PublicAccess     bool   `json:"publicAccess"`
	PublicPermission string `json:"publicPermission"`
	Role             string `json:"role,omitempty"`
}

type Grant struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

type Permissions struct {
	PublicAccess     bool    `json:"publicAccess"`
	PublicPermission string  `json:"publicPermission"`
	Grants           []Grant `json:"grants"`
}

type FileInfo struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Version int64  `json:"version"`
}

// File is file content as carried over the wire: Content is plain text for
// utf8 and base64 text otherwise.
type File struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"`
	Version  int64  `json:"version,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. A nil hc gets a client
// with a 30 second timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// mapError turns HTTP failures into the shared sentinel errors.
func mapError(err error) error {
	var se *netx.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var sentinel error
	switch se.Status {
	case http.StatusUnauthorized:
		sentinel = common.ErrorUnauthorized
	case http.StatusForbidden:
		sentinel = common.ErrForbidden
	case http.StatusNotFound:
		sentinel = common.ErrorNotFound
	case http.StatusBadRequest:
		sentinel = common.ErrorValidation
	case http.StatusConflict:
		sentinel = common.ErrConflict
	case http.StatusRequestEntityTooLarge:
		sentinel = common.ErrTooLarge
	default:
		sentinel = common.ErrorInternal
	}
	return fmt.Errorf("%w: %w", sentinel, se)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, s Session, in, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return mapError(netx.DoJSON(ctx, c.http, method, u, s.Token, in, out))
}

func projectPath(name, resource string) string {
	return "/projects/" + url.PathEscape(name) + "/" + resource
}

func ownerQuery(p ProjectRef) url.Values {
	q := url.Values{}
	if p.Owner != "" {
		q.Set("owner", p.Owner)
	}
	return q
}

// Health reports whether the server answers.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, Session{}, nil, nil)
}
