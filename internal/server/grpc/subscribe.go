package grpc

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/dmitrijs2005/sharelink/internal/live"
	"github.com/dmitrijs2005/sharelink/internal/server/models"
	"github.com/dmitrijs2005/sharelink/internal/server/notifier"
	"github.com/dmitrijs2005/sharelink/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type liveStream = grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]

// streamConn lets the hub's drain goroutine and the request loop share one
// stream.
type streamConn struct {
	mu     sync.Mutex
	stream liveStream
}

func (c *streamConn) send(m live.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream.Send(m.ToStruct())
}

func (c *streamConn) Send(ev models.Event) error {
	return c.send(eventMessage(ev))
}

func eventMessage(ev models.Event) live.Message {
	m := live.Message{ProjectName: ev.ProjectName, Path: ev.Path}
	switch ev.Type {
	case models.EventFileUpdated:
		m.Type = live.TypeFileUpdated
		m.Content = ev.Content.String()
		m.Encoding = string(ev.Content.Encoding)
		m.Version = ev.Version
	case models.EventFileDeleted:
		m.Type = live.TypeFileDeleted
	default:
		m.Type = string(ev.Type)
	}
	return m
}

// errorText hides server faults from the client and reports whether err
// was one.
func errorText(err error) (string, bool) {
	switch {
	case errors.Is(err, common.ErrForbidden),
		errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorValidation):
		return err.Error(), false
	default:
		return "server error", true
	}
}

// Subscribe runs one live connection. Events for every joined room are
// pushed until the client closes the stream.
func (s *GRPCServer) Subscribe(stream liveStream) error {
	ctx := stream.Context()
	userID := userIDFrom(ctx)

	conn := &streamConn{stream: stream}
	sub := s.hub.Register(conn)
	log := s.logger.With("subscriber", sub.ID(), "user", userID)
	log.Info(ctx, "live connection opened")

	defer func() {
		s.hub.Unregister(sub)
		<-sub.Done()
		log.Info(ctx, "live connection closed")
	}()

	joined := make(map[services.ProjectRef]string)

	for {
		in, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if c := status.Code(err); c == codes.Canceled || c == codes.DeadlineExceeded {
				return nil
			}
			return err
		}

		msg := live.FromStruct(in)
		ref := services.ProjectRef{Name: msg.ProjectName, OwnerEmail: msg.Owner}

		var reply live.Message
		switch msg.Type {
		case live.TypeJoin:
			reply = s.join(ctx, sub, joined, ref, userID)
		case live.TypeLeave:
			if room, ok := joined[ref]; ok {
				s.hub.Leave(sub, room)
				delete(joined, ref)
			}
			reply = live.Message{Type: live.TypeLeft, ProjectName: ref.Name, Owner: ref.OwnerEmail}
		default:
			reply = live.Message{Type: live.TypeError, Error: "unknown message type " + msg.Type}
		}

		if err := conn.send(reply); err != nil {
			return err
		}
	}
}

func (s *GRPCServer) join(ctx context.Context, sub *notifier.Subscriber, joined map[services.ProjectRef]string,
	ref services.ProjectRef, userID string) live.Message {

	p, err := s.projects.Open(ctx, ref, userID, models.OpRead)
	if err != nil {
		text, internal := errorText(err)
		if internal {
			s.logger.Error(ctx, "join failed", "project", ref.Name, "error", err)
		}
		return live.Message{Type: live.TypeError, ProjectName: ref.Name, Owner: ref.OwnerEmail, Error: text}
	}

	if err := s.hub.Join(sub, p.ID); err != nil {
		return live.Message{Type: live.TypeError, ProjectName: ref.Name, Error: "server error"}
	}
	joined[ref] = p.ID
	return live.Message{Type: live.TypeJoined, ProjectName: ref.Name, Owner: ref.OwnerEmail}
}
