package rpcserver

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/jeeves-cluster-organization/exposerpc/auth"
	"github.com/jeeves-cluster-organization/exposerpc/observability"
)

// traceID returns the active OTel span's trace id as a hex string, or ""
// if ctx carries no valid span (e.g. instrumentation is disabled). Lets log
// lines be cross-referenced against the spans otelgrpc's StatsHandler
// produces for the same call.
func traceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// CredentialInterceptor reads the transport's metadata map on call entry
// and installs an auth.CredentialContext into the call-scoped context,
// per spec.md §4.4: it always runs and never rejects — the Authenticator
// decides after the Registry resolves the target. Grounded on
// coreengine/grpc/interceptors.go's interceptor shape.
func CredentialInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(withCredentials(ctx), req)
	}
}

// StreamCredentialInterceptor is the streaming counterpart. Per spec.md
// §4.4 and DESIGN.md's Open Question 2 resolution, credentials are read
// once at stream open from the stream's context and never refreshed for
// the stream's lifetime.
func StreamCredentialInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		wrapped := &credentialServerStream{ServerStream: ss, ctx: withCredentials(ss.Context())}
		return handler(srv, wrapped)
	}
}

type credentialServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *credentialServerStream) Context() context.Context { return s.ctx }

func withCredentials(ctx context.Context) context.Context {
	md, _ := metadata.FromIncomingContext(ctx)
	cc := auth.CredentialContext{
		Token: extractToken(md),
		Key:   extractKey(md),
	}
	return auth.WithCredentialContext(ctx, cc)
}

func extractToken(md metadata.MD) string {
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if rest, ok := strings.CutPrefix(v, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutPrefix(v, "bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return v
}

func extractKey(md metadata.MD) string {
	vals := md.Get("x-api-key")
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}

// LoggingInterceptor logs the duration and result of each RPC call, once,
// after the handler returns.
// Verbatim in shape from coreengine/grpc/interceptors.go.
func LoggingInterceptor(logger Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)
		requestID := RequestIDFromContext(ctx)
		st, _ := status.FromError(err)
		observability.RecordGRPCRequest(info.FullMethod, st.Code().String(), int(duration.Milliseconds()))
		if err != nil {
			logger.Error("grpc_request_failed",
				"request_id", requestID,
				"trace_id", traceID(ctx),
				"method", info.FullMethod,
				"duration_ms", duration.Milliseconds(),
				"code", st.Code().String(),
				"error", err.Error(),
			)
		} else {
			logger.Debug("grpc_request_completed",
				"request_id", requestID,
				"trace_id", traceID(ctx),
				"method", info.FullMethod,
				"duration_ms", duration.Milliseconds(),
			)
		}
		return resp, err
	}
}

// StreamLoggingInterceptor is LoggingInterceptor's streaming counterpart.
func StreamLoggingInterceptor(logger Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		duration := time.Since(start)
		requestID := RequestIDFromContext(ss.Context())
		st, _ := status.FromError(err)
		observability.RecordGRPCRequest(info.FullMethod, st.Code().String(), int(duration.Milliseconds()))
		if err != nil {
			logger.Error("grpc_stream_failed",
				"request_id", requestID,
				"trace_id", traceID(ss.Context()),
				"method", info.FullMethod,
				"duration_ms", duration.Milliseconds(),
				"code", st.Code().String(),
				"error", err.Error(),
			)
		} else {
			logger.Debug("grpc_stream_completed",
				"request_id", requestID,
				"trace_id", traceID(ss.Context()),
				"method", info.FullMethod,
				"duration_ms", duration.Milliseconds(),
			)
		}
		return err
	}
}

// RecoveryInterceptor recovers a panic raised by a handler, logs the stack
// trace, and returns an Internal error instead of crashing the process.
func RecoveryInterceptor(logger Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("grpc_panic_recovered",
					"method", info.FullMethod,
					"panic", fmt.Sprintf("%v", p),
					"stack", string(debug.Stack()),
				)
				err = status.Errorf(codes.Internal, "panic recovered: %v", p)
			}
		}()
		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor is RecoveryInterceptor's streaming counterpart.
func StreamRecoveryInterceptor(logger Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("grpc_stream_panic_recovered",
					"method", info.FullMethod,
					"panic", fmt.Sprintf("%v", p),
					"stack", string(debug.Stack()),
				)
				err = status.Errorf(codes.Internal, "panic recovered: %v", p)
			}
		}()
		return handler(srv, ss)
	}
}

// ChainUnaryInterceptors chains unary interceptors, first wraps second,
// etc. — verbatim from coreengine/grpc/interceptors.go.
func ChainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			currentHandler := chain
			chain = func(ctx context.Context, req any) (any, error) {
				return interceptor(ctx, req, info, currentHandler)
			}
		}
		return chain(ctx, req)
	}
}

// ChainStreamInterceptors is ChainUnaryInterceptors's streaming counterpart.
func ChainStreamInterceptors(interceptors ...grpc.StreamServerInterceptor) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			currentHandler := chain
			chain = func(srv any, ss grpc.ServerStream) error {
				return interceptor(srv, ss, info, currentHandler)
			}
		}
		return chain(srv, ss)
	}
}

// ServerOptions builds the standard interceptor chain: recovery and
// logging ahead of credential extraction, matching
// coreengine/grpc/interceptors.go's ServerOptions convention.
func ServerOptions(logger Logger) []grpc.ServerOption {
	unary := ChainUnaryInterceptors(
		RequestIDInterceptor(),
		RecoveryInterceptor(logger),
		LoggingInterceptor(logger),
		CredentialInterceptor(),
	)
	stream := ChainStreamInterceptors(
		StreamRequestIDInterceptor(),
		StreamRecoveryInterceptor(logger),
		StreamLoggingInterceptor(logger),
		StreamCredentialInterceptor(),
	)
	return []grpc.ServerOption{
		grpc.UnaryInterceptor(unary),
		grpc.StreamInterceptor(stream),
	}
}
