// Package services contains server-side business logic. This file implements
// UserService, the identity provider: registration, login and verification
// of the bearer tokens every other operation depends on.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/server/auth"
	"github.com/dmitrijs2005/sharelink/internal/server/config"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/repomanager"
)

type UserService struct {
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// NormalizeEmail lowercases and validates an address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email %q", common.ErrorValidation, email)
	}
	return email, nil
}

func (s *UserService) issueToken(user *models.User) (string, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}

// Register creates an account and returns a token for it.
// A taken email yields common.ErrConflict.
func (s *UserService) Register(ctx context.Context, email, password string) (string, *models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	user, err := s.repomanager.Repositories().Users.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login checks credentials. Unknown emails and wrong passwords both yield
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Repositories().Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// AuthenticateOrRegister logs the user in, creating the account on first
// use. An existing account with a different password is rejected.
func (s *UserService) AuthenticateOrRegister(ctx context.Context, email, password string) (string, *models.User, error) {
	token, user, err := s.Login(ctx, email, password)
	if err == nil {
		return token, user, nil
	}
	if !errors.Is(err, common.ErrorUnauthorized) {
		return "", nil, err
	}

	token, user, err = s.Register(ctx, email, password)
	if errors.Is(err, common.ErrConflict) {
		// the account exists, so the password was wrong, or a concurrent
		// registration won; either way a retry of Login decides
		return s.Login(ctx, email, password)
	}
	return token, user, err
}

// Verify maps a bearer token to its user ID. Invalid and expired tokens, as
// well as tokens of users that no longer exist, yield common.ErrorUnauthorized.
func (s *UserService) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	if _, err := s.repomanager.Repositories().Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}
	return userID, nil
}
