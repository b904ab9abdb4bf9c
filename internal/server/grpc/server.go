// Package grpc serves the live channel: authenticated clients join project
// rooms and receive file events as they happen.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/sharelink/internal/live"
	"github.com/dmitrijs2005/sharelink/internal/logging"
	"github.com/dmitrijs2005/sharelink/internal/server/notifier"
	"github.com/dmitrijs2005/sharelink/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	users    *services.UserService
	projects *services.ProjectService
	hub      *notifier.Hub
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us *services.UserService, ps *services.ProjectService, hub *notifier.Hub) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		projects: ps,
		hub:      hub,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts live connections on l until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, l net.Listener) error {
	opts := append(live.ServerOptions(), grpc.ChainStreamInterceptor(s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	live.Register(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil {
		return err
	}
	return nil
}
