// Package subscriber keeps the agent attached to the server's live channel
// and hands file events to a callback.
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/live"
	"github.com/dmitrijs2005/sharelink/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrJoinRejected is returned when the server refuses the room.
var ErrJoinRejected = errors.New("join rejected")

// Dial connects to the live channel at addr (host:port). Extra options are
// applied after the defaults.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		live.ClientOptions(),
	}, opts...)
	return grpc.NewClient(addr, opts...)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

type Subscriber struct {
	cc  grpc.ClientConnInterface
	log logging.Logger
}

func New(cc grpc.ClientConnInterface, log logging.Logger) *Subscriber {
	return &Subscriber{cc: cc, log: log.With("module", "subscriber")}
}

// Run joins project (owner may be empty) and calls handle for every
// fileUpdated or fileDeleted message until ctx ends or the server closes
// the stream. A cancelled ctx is not an error.
func (s *Subscriber) Run(ctx context.Context, token, project, owner string, handle func(live.Message)) error {
	stream, err := live.Subscribe(withAccessToken(ctx, token), s.cc)
	if err != nil {
		return err
	}

	join := live.Message{Type: live.TypeJoin, ProjectName: project, Owner: owner}
	if err := stream.Send(join.ToStruct()); err != nil {
		if errors.Is(err, io.EOF) {
			// the real status is only available from Recv
			_, err = stream.Recv()
		}
		return mapStreamError(ctx, err)
	}

	for {
		in, err := stream.Recv()
		if err != nil {
			return mapStreamError(ctx, err)
		}

		msg := live.FromStruct(in)
		switch msg.Type {
		case live.TypeJoined:
			s.log.Info(ctx, "joined project", "project", msg.ProjectName)
		case live.TypeError:
			if msg.ProjectName == project {
				return fmt.Errorf("%w: %s", ErrJoinRejected, msg.Error)
			}
			s.log.Warn(ctx, "live channel error", "error", msg.Error)
		case live.TypeFileUpdated, live.TypeFileDeleted:
			handle(msg)
		default:
			s.log.Debug(ctx, "ignored message", "type", msg.Type)
		}
	}
}

func mapStreamError(ctx context.Context, err error) error {
	if errors.Is(err, io.EOF) || ctx.Err() != nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Canceled:
		return nil
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, status.Convert(err).Message())
	}
	return err
}
