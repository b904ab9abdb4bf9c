package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/sharelink/internal/agent/client"
	"github.com/dmitrijs2005/sharelink/internal/agent/subscriber"
	"github.com/dmitrijs2005/sharelink/internal/agent/syncer"
	"github.com/dmitrijs2005/sharelink/internal/live"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

// dialLive is a test seam for subscriber.Dial.
var dialLive = func(addr string) (grpc.ClientConnInterface, func() error, error) {
	cc, err := subscriber.Dial(addr)
	if err != nil {
		return nil, nil, err
	}
	return cc, cc.Close, nil
}

// projectRef names the project from args, falling back to the workspace
// directory name.
func (a *App) projectRef(args []string, owner string) client.ProjectRef {
	name := filepath.Base(a.config.Workspace)
	if len(args) > 0 {
		name = args[0]
	}
	return client.ProjectRef{Name: name, Owner: owner}
}

func (a *App) printReport(verb string, r syncer.Report) {
	n := r.Uploaded + r.Downloaded
	a.printf("%s %d file(s)", verb, n)
	if r.Skipped > 0 {
		a.printf(", skipped %d", r.Skipped)
	}
	if r.Failed > 0 {
		a.printf(", %d failed", r.Failed)
	}
	a.printf("\n")
}

func uploadCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "upload [project]",
		Short: "Upload the workspace to a project (default: workspace directory name)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				ref := a.projectRef(args, owner)
				if ref.Owner == "" {
					// creates the project on first upload
					link, _, err := a.api.Share(ctx, s, ref.Name)
					if err != nil {
						return err
					}
					a.printf("Project link: %s\n", link)
				}
				r, err := a.newSyncer(s, ref).Upload(ctx)
				if err != nil {
					return err
				}
				a.printReport("Uploaded", r)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner email of a project shared with you")
	return cmd
}

func downloadCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "download <project>",
		Short: "Download a project into the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				r, err := a.newSyncer(s, a.projectRef(args, owner)).Download(ctx)
				if err != nil {
					return err
				}
				a.printReport("Downloaded", r)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner email of a project shared with you")
	return cmd
}

func watchCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "watch [project]",
		Short: "Keep the workspace and a project in sync until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				return a.watch(ctx, s, a.projectRef(args, owner))
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner email of a project shared with you")
	return cmd
}

// watch runs the poll loop and the live subscription side by side. It
// returns when ctx ends or the live channel fails.
func (a *App) watch(ctx context.Context, s client.Session, p client.ProjectRef) error {
	cc, closeConn, err := dialLive(a.config.LiveAddr)
	if err != nil {
		return fmt.Errorf("dial live channel: %w", err)
	}
	defer closeConn()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan live.Message, 64)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- a.newSyncer(s, p).Watch(ctx, a.config.PollInterval.Duration, events)
	}()

	a.printf("Watching %s in %s\n", p.Name, a.config.Workspace)

	sub := subscriber.New(cc, a.log)
	err = sub.Run(ctx, s.Token, p.Name, p.Owner, func(m live.Message) {
		select {
		case events <- m:
		case <-ctx.Done():
		}
	})
	// Run has returned, nothing sends on events any more
	close(events)

	if err != nil {
		cancel()
		<-watchDone
		return err
	}
	a.log.Info(ctx, "live channel closed")
	cancel()
	return <-watchDone
}
