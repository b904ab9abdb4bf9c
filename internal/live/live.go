// Package live describes the LiveService gRPC stream shared by the server
// and the sync agent. Messages travel as google.protobuf.Struct, so no
// generated code is involved.
package live

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName     = "sharelink.live.LiveService"
	SubscribeMethod = "/" + ServiceName + "/Subscribe"
)

// MaxFrameSize is the largest frame either side sends or accepts.
const MaxFrameSize = 64 << 20

// frameEnvelope covers the Struct keys, path and version around the content.
const frameEnvelope = 64 << 10

// FrameSize is the size of a fileUpdated frame carrying contentSize bytes
// in the worst case, base64.
func FrameSize(contentSize int64) int64 {
	return (contentSize+2)/3*4 + frameEnvelope
}

// ClientOptions lifts the default 4 MiB receive limit so any accepted file
// fits in one frame.
func ClientOptions() grpc.DialOption {
	return grpc.WithDefaultCallOptions(
		grpc.MaxCallRecvMsgSize(MaxFrameSize),
		grpc.MaxCallSendMsgSize(MaxFrameSize),
	)
}

// ServerOptions is the server-side counterpart of ClientOptions.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.MaxSendMsgSize(MaxFrameSize),
		grpc.MaxRecvMsgSize(MaxFrameSize),
	}
}

// Server is implemented by the live channel endpoint.
type Server interface {
	Subscribe(grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	return srv.(Server).Subscribe(&grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "live.proto",
}

// Register attaches srv to a gRPC server.
func Register(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// Subscribe opens the bidirectional stream on cc.
func Subscribe(ctx context.Context, cc grpc.ClientConnInterface, opts ...grpc.CallOption) (grpc.BidiStreamingClient[structpb.Struct, structpb.Struct], error) {
	stream, err := cc.NewStream(ctx, &ServiceDesc.Streams[0], SubscribeMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}, nil
}
