package client

import (
	"context"
	"net/http"
)

func (c *Client) PutFile(ctx context.Context, s Session, p ProjectRef, f File) (int64, error) {
	var resp struct {
		Version int64 `json:"version"`
	}
	f.Version = 0
	if err := c.do(ctx, http.MethodPut, projectPath(p.Name, "files"), ownerQuery(p), s, f, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

func (c *Client) GetFile(ctx context.Context, s Session, p ProjectRef, path string) (*File, error) {
	q := ownerQuery(p)
	q.Set("path", path)
	var f File
	if err := c.do(ctx, http.MethodGet, projectPath(p.Name, "files"), q, s, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) DeleteFile(ctx context.Context, s Session, p ProjectRef, path string) error {
	q := ownerQuery(p)
	q.Set("path", path)
	return c.do(ctx, http.MethodDelete, projectPath(p.Name, "files"), q, s, nil, nil)
}

func (c *Client) ListFiles(ctx context.Context, s Session, p ProjectRef) ([]FileInfo, error) {
	var list []FileInfo
	if err := c.do(ctx, http.MethodGet, projectPath(p.Name, "files/all"), ownerQuery(p), s, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
