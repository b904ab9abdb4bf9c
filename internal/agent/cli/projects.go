package cli

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/sharelink/internal/agent/client"
	"github.com/spf13/cobra"
)

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <project>",
		Short: "Create an empty project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				p, err := a.api.CreateProject(ctx, s, args[0])
				if err != nil {
					return err
				}
				a.printf("Created project %s\n", p.Name)
				return nil
			})
		},
	}
}

func shareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share <project>",
		Short: "Print the share link of a project, creating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				link, _, err := a.api.Share(ctx, s, args[0])
				if err != nil {
					return err
				}
				a.printf("%s\n", link)
				return nil
			})
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printProjects(a *App, list []client.ProjectSummary) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tOWNER\tROLE\tPUBLIC\tLINK")
	for _, p := range list {
		public := "-"
		if p.PublicAccess {
			public = p.PublicPermission
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name, orDash(p.Owner), orDash(p.Role), public, orDash(p.LinkID))
	}
	_ = tw.Flush()
}

func projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects you own or were granted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				list, err := a.api.ListProjects(ctx, s)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					a.printf("No projects.\n")
					return nil
				}
				printProjects(a, list)
				return nil
			})
		},
	}
}

// linkID accepts either a bare link ID or a full share link.
func linkID(arg string) string {
	if u, err := url.Parse(arg); err == nil && u.Scheme != "" {
		return path.Base(strings.TrimRight(u.Path, "/"))
	}
	return arg
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <link>",
		Short: "Show the project behind a share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				// anonymous resolution is allowed
				s, _ := a.session(ctx)
				p, err := a.api.ResolveLink(ctx, s, linkID(args[0]))
				if err != nil {
					return err
				}
				printProjects(a, []client.ProjectSummary{*p})
				return nil
			})
		},
	}
}

func printPermissions(a *App, p *client.Permissions) {
	if p.PublicAccess {
		a.printf("Public: %s\n", p.PublicPermission)
	} else {
		a.printf("Public: off\n")
	}
	if len(p.Grants) == 0 {
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tPERMISSION")
	for _, g := range p.Grants {
		fmt.Fprintf(tw, "%s\t%s\n", g.Email, g.Permission)
	}
	_ = tw.Flush()
}

func permsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perms",
		Short: "Manage who can read and write a project",
	}

	get := &cobra.Command{
		Use:   "get <project>",
		Short: "Show public access and grants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				p, err := a.api.GetPermissions(ctx, s, args[0])
				if err != nil {
					return err
				}
				printPermissions(a, p)
				return nil
			})
		},
	}

	var email, permission string
	set := &cobra.Command{
		Use:   "set <project>",
		Short: "Grant a user a permission, or set public access without --email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				var target *string
				if email != "" {
					target = &email
				}
				p, err := a.api.SetPermissions(ctx, s, args[0], target, permission)
				if err != nil {
					return err
				}
				printPermissions(a, p)
				return nil
			})
		},
	}
	set.Flags().StringVar(&email, "email", "", "user to grant; omit to change public access")
	set.Flags().StringVar(&permission, "permission", "read", "read | write | read-write")

	var revokeEmail string
	revoke := &cobra.Command{
		Use:   "revoke <project>",
		Short: "Remove a user's grant, or turn off public access without --email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				p, err := a.api.RevokePermission(ctx, s, args[0], revokeEmail)
				if err != nil {
					return err
				}
				printPermissions(a, p)
				return nil
			})
		},
	}
	revoke.Flags().StringVar(&revokeEmail, "email", "", "user whose grant is removed")

	cmd.AddCommand(get, set, revoke)
	return cmd
}
