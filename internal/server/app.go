// Package server assembles the sharelink server: storage backends, the
// permission engine, services and the HTTP and live channel endpoints. It
// owns graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sharelink/internal/logging"
	"github.com/dmitrijs2005/sharelink/internal/server/blobs"
	"github.com/dmitrijs2005/sharelink/internal/server/config"
	"github.com/dmitrijs2005/sharelink/internal/server/httpapi"
	"github.com/dmitrijs2005/sharelink/internal/server/notifier"
	"github.com/dmitrijs2005/sharelink/internal/server/permissions"
	"github.com/dmitrijs2005/sharelink/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sharelink/internal/server/services"

	gs "github.com/dmitrijs2005/sharelink/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	hub         *notifier.Hub
	users       *services.UserService
	projects    *services.ProjectService
	files       *services.FileService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	logger := logging.NewJSON(logOut, level)

	rm, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := openBlobStore(ctx, c)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	hub := notifier.NewHub(c.NotifierQueueSize, logger)
	engine := permissions.NewEngine(rm.Repositories().Grants)

	us := services.NewUserService(rm, c)
	ps := services.NewProjectService(rm, engine, c.LinkBaseURL, logger)
	fs := services.NewFileService(rm, store, ps, hub, c.MaxContentSize, logger)

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		hub:         hub,
		users:       us,
		projects:    ps,
		files:       fs,
	}, nil
}

func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.Storage {
	case config.BackendPostgres:
		m, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := m.RunMigrations(ctx); err != nil {
			_ = m.Close()
			return nil, err
		}
		return m, nil
	default:
		return repomanager.NewMemoryRepositoryManager(), nil
	}
}

func openBlobStore(ctx context.Context, c *config.Config) (blobs.Store, error) {
	var store blobs.Store
	switch c.BlobStorage {
	case config.BackendS3:
		s3, err := blobs.NewS3Store(ctx, blobs.S3Config{
			Region:    c.S3Region,
			Endpoint:  c.S3BaseEndpoint,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		store = s3
	default:
		store = blobs.NewMemoryStore()
	}

	if c.BlobCompression {
		store = blobs.NewCompressedStore(store)
	}
	return store, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.users, app.projects, app.files, app.config.MaxContentSize)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.users, app.projects, app.hub)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or one of the
// endpoints fails, then releases storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return app.Close()
}

func (app *App) Close() error {
	if err := app.repomanager.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}
	return nil
}
