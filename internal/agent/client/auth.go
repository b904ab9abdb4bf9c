package client

import (
	"context"
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

func (c *Client) auth(ctx context.Context, path, email string, password []byte) (Session, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, path, nil, Session{}, credentials{Email: email, Password: string(password)}, &resp)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: resp.Token, UserID: resp.UserID, Email: resp.Email}, nil
}

// Authenticate logs in, registering the account on first use.
func (c *Client) Authenticate(ctx context.Context, email string, password []byte) (Session, error) {
	return c.auth(ctx, "/auth/token", email, password)
}

func (c *Client) Register(ctx context.Context, email string, password []byte) (Session, error) {
	return c.auth(ctx, "/auth/register", email, password)
}

func (c *Client) Login(ctx context.Context, email string, password []byte) (Session, error) {
	return c.auth(ctx, "/auth/login", email, password)
}

// Verify reports whether the session token is still accepted.
func (c *Client) Verify(ctx context.Context, s Session) (bool, error) {
	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/verify", nil, Session{}, map[string]string{"token": s.Token}, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}
