package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/sharelink/internal/agent/client"
	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/spf13/cobra"
)

type authFunc func(ctx context.Context, email string, password []byte) (client.Session, error)

// promptAuth asks for credentials, calls fn and saves the resulting session.
func (a *App) promptAuth(ctx context.Context, fn authFunc) error {
	email, err := GetSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := fn(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.saveSession(ctx, s); err != nil {
		return err
	}
	a.log.Info(ctx, "session saved", "email", s.Email)
	a.printf("Logged in as %s\n", s.Email)
	return nil
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				return a.promptAuth(ctx, a.api.Register)
			})
		},
	}
}

func loginCmd() *cobra.Command {
	var existing bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in, creating the account on first use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				fn := a.api.Authenticate
				if existing {
					fn = a.api.Login
				}
				return a.promptAuth(ctx, fn)
			})
		},
	}
	cmd.Flags().BoolVar(&existing, "existing", false, "fail instead of creating a new account")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				if err := a.store.Metadata.Delete(ctx, sessionKey); err != nil {
					return err
				}
				a.printf("Logged out\n")
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the server and the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				if err := a.api.Health(ctx); err != nil {
					return err
				}
				a.printf("Server: %s (up)\n", a.config.ServerURL)

				s, err := a.session(ctx)
				if errors.Is(err, ErrNotLoggedIn) {
					a.printf("Session: none\n")
					return nil
				}
				if err != nil {
					return err
				}
				ok, err := a.api.Verify(ctx, s)
				if err != nil {
					return err
				}
				if !ok {
					a.printf("Session: expired, log in again\n")
					return nil
				}
				a.printf("Session: %s\n", s.Email)
				return nil
			})
		},
	}
}
