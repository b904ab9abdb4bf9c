package cli

import (
	"context"
	"io"

	"github.com/dmitrijs2005/sharelink/internal/agent/config"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the agent command tree reading from in and writing
// to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "sharelink",
		Short:         "Share and sync project workspaces",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		configCmd(),
		registerCmd(),
		loginCmd(),
		logoutCmd(),
		statusCmd(),
		createCmd(),
		shareCmd(),
		projectsCmd(),
		resolveCmd(),
		permsCmd(),
		uploadCmd(),
		downloadCmd(),
		watchCmd(),
	)
	return root
}

// withApp runs fn with an App built from cmd and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
}
