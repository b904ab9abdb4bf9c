package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/sharelink/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// accessTokenFrom reads the token from access_token metadata, falling back
// to an authorization bearer header.
func accessTokenFrom(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 && values[0] != "" {
		return values[0]
	}
	for _, v := range md.Get("authorization") {
		if token, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context { return s.ctx }

func (s *GRPCServer) accessTokenInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx := ss.Context()

	accessToken := accessTokenFrom(ctx)
	if accessToken == "" {
		return status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := s.users.Verify(ctx, accessToken)
	if err != nil {
		s.logger.Warn(ctx, "live channel rejected", "method", info.FullMethod, "error", err)
		return status.Error(codes.Unauthenticated, "invalid token")
	}

	return handler(srv, &authedStream{ServerStream: ss, ctx: context.WithValue(ctx, userIDKey, userID)})
}
