// Package httpapi serves the JSON API: accounts, projects, permissions and
// file operations. Authentication is a bearer token in the Authorization
// header; every project-scoped route accepts an optional owner=<email>
// query parameter to pick between projects sharing a name.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sharelink/internal/logging"
	"github.com/dmitrijs2005/sharelink/internal/server/services"
)

// Request bodies may carry the largest accepted file with every byte JSON
// escaped to \u00XX, plus the surrounding fields. FileService.Put enforces
// the decoded size.
const (
	jsonEscapeFactor = 6
	jsonOverhead     = 64 << 10
)

type Server struct {
	address  string
	users    *services.UserService
	projects *services.ProjectService
	files    *services.FileService
	maxBody  int64
	logger   logging.Logger
}

func NewServer(address string, l logging.Logger, us *services.UserService, ps *services.ProjectService,
	fs *services.FileService, maxContentSize int64) *Server {
	return &Server{
		address:  address,
		users:    us,
		projects: ps,
		files:    fs,
		maxBody:  maxContentSize*jsonEscapeFactor + jsonOverhead,
		logger:   l.With("module", "http_server"),
	}
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /auth/token", s.handleAuthenticate)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/verify", s.handleVerify)

	mux.Handle("POST /projects/link", s.withAuth(s.handleCreateOrGetLink))
	mux.Handle("POST /projects", s.withAuth(s.handleCreateProject))
	mux.Handle("GET /projects", s.withAuth(s.handleListProjects))

	// GET /projects/link/{linkId} and GET /projects/{name}/files overlap,
	// so both go through one dispatcher.
	mux.HandleFunc("GET /projects/{name}/{resource}", s.handleProjectGet)

	mux.Handle("PUT /projects/{name}/permissions", s.withAuth(s.handleSetPermissions))
	mux.Handle("DELETE /projects/{name}/permissions", s.withAuth(s.handleRevokePermission))
	mux.Handle("PUT /projects/{name}/files", s.withAuth(s.handlePutFile))
	mux.Handle("DELETE /projects/{name}/files", s.withAuth(s.handleDeleteFile))
	mux.Handle("GET /projects/{name}/files/all", s.withAuth(s.handleListFiles))

	return s.withRecover(s.withRequestLog(s.withBodyLimit(mux)))
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
