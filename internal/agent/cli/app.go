package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/sharelink/internal/agent/client"
	"github.com/dmitrijs2005/sharelink/internal/agent/config"
	"github.com/dmitrijs2005/sharelink/internal/agent/state"
	"github.com/dmitrijs2005/sharelink/internal/agent/syncer"
	"github.com/dmitrijs2005/sharelink/internal/agent/workspace"
	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/logging"
	"github.com/spf13/cobra"
)

const sessionKey = "session"

// ErrNotLoggedIn is returned by commands that need a saved session.
var ErrNotLoggedIn = errors.New("not logged in, run `sharelink login` first")

type App struct {
	config *config.Config
	log    logging.Logger
	store  *state.Store
	api    *client.Client
	in     *bufio.Reader
	out    io.Writer
}

// newApp loads the configuration from cmd's flags and opens the
// workspace state. The caller must Close the App.
func newApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	runID, err := common.MakeRandHexString(4)
	if err != nil {
		return nil, err
	}
	log := logging.NewJSON(cmd.ErrOrStderr(), level).With("run", runID)

	if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	store, err := state.Open(cmd.Context(), cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}

	return &App{
		config: cfg,
		log:    log,
		store:  store,
		api:    client.New(cfg.ServerURL, nil),
		in:     bufio.NewReader(cmd.InOrStdin()),
		out:    cmd.OutOrStdout(),
	}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) saveSession(ctx context.Context, s client.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return a.store.Metadata.Set(ctx, sessionKey, b)
}

// session returns the saved session or ErrNotLoggedIn.
func (a *App) session(ctx context.Context) (client.Session, error) {
	var s client.Session
	b, err := a.store.Metadata.Get(ctx, sessionKey)
	if err != nil {
		return s, err
	}
	if b == nil {
		return s, ErrNotLoggedIn
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("corrupt saved session: %w", err)
	}
	if !s.Valid() {
		return s, ErrNotLoggedIn
	}
	return s, nil
}

func (a *App) newWorkspace() *workspace.Workspace {
	return workspace.NewOS(a.config.Workspace, a.config.Exclude, a.config.MaxFileSize)
}

func (a *App) newSyncer(s client.Session, p client.ProjectRef) *syncer.Agent {
	return syncer.New(a.api, s, p, a.newWorkspace(), a.store.Files, a.log)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
