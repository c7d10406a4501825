package rpcserver

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
)

type requestIDKey struct{}

// RequestIDFromContext returns the correlation id stamped onto ctx by
// RequestIDInterceptor/StreamRequestIDInterceptor, or "" if none is present
// (e.g. in a unit test that calls a Service method directly).
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func withRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestIDKey{}, uuid.New().String())
}

// RequestIDInterceptor stamps a fresh correlation id onto every call's
// context so LoggingInterceptor's log lines can be traced back to the same
// inbound request; published eventbus messages do not carry it. Runs ahead
// of logging in ServerOptions's chain.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(withRequestID(ctx), req)
	}
}

// StreamRequestIDInterceptor is RequestIDInterceptor's streaming counterpart.
// A single id covers the whole stream's lifetime, not one per message.
func StreamRequestIDInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		wrapped := &credentialServerStream{ServerStream: ss, ctx: withRequestID(ss.Context())}
		return handler(srv, wrapped)
	}
}
