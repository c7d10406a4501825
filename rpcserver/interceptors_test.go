package rpcserver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// testLogger captures log calls for verification.
type testLogger struct {
	debugCalls []map[string]any
	errorCalls []map[string]any
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.debugCalls = append(l.debugCalls, toMap(msg, keysAndValues))
}
func (l *testLogger) Info(msg string, keysAndValues ...any)  {}
func (l *testLogger) Warn(msg string, keysAndValues ...any)  {}
func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.errorCalls = append(l.errorCalls, toMap(msg, keysAndValues))
}

func toMap(msg string, keysAndValues []any) map[string]any {
	m := map[string]any{"msg": msg}
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			m[key] = keysAndValues[i+1]
		}
	}
	return m
}

type mockServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (m *mockServerStream) Context() context.Context {
	if m.ctx != nil {
		return m.ctx
	}
	return context.Background()
}

func TestLoggingInterceptor_Success(t *testing.T) {
	logger := &testLogger{}
	interceptor := LoggingInterceptor(logger)

	info := &grpc.UnaryServerInfo{FullMethod: "/exposerpc.ExposeRPC/InvokeCallable"}
	handler := func(ctx context.Context, req any) (any, error) {
		return "response", nil
	}

	resp, err := interceptor(context.Background(), "request", info, handler)

	require.NoError(t, err)
	assert.Equal(t, "response", resp)
	require.Len(t, logger.debugCalls, 1)
	assert.Equal(t, "grpc_request_completed", logger.debugCalls[0]["msg"])
}

func TestLoggingInterceptor_Error(t *testing.T) {
	logger := &testLogger{}
	interceptor := LoggingInterceptor(logger)

	info := &grpc.UnaryServerInfo{FullMethod: "/exposerpc.ExposeRPC/InvokeCallable"}
	handler := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "resource not found")
	}

	_, err := interceptor(context.Background(), "request", info, handler)

	require.Error(t, err)
	require.Len(t, logger.errorCalls, 1)
	assert.Equal(t, "NotFound", logger.errorCalls[0]["code"])
}

func TestRequestIDInterceptor_StampsCorrelationID(t *testing.T) {
	interceptor := RequestIDInterceptor()

	info := &grpc.UnaryServerInfo{FullMethod: "/exposerpc.ExposeRPC/InvokeCallable"}
	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	}

	_, err := interceptor(context.Background(), "request", info, handler)

	require.NoError(t, err)
	assert.NotEmpty(t, seen)
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestRequestIDInterceptor_UniquePerCall(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/exposerpc.ExposeRPC/InvokeCallable"}

	var first, second string
	handler := func(ctx context.Context, req any) (any, error) {
		return nil, nil
	}
	_, _ = interceptor(context.Background(), "request", info, func(ctx context.Context, req any) (any, error) {
		first = RequestIDFromContext(ctx)
		return handler(ctx, req)
	})
	_, _ = interceptor(context.Background(), "request", info, func(ctx context.Context, req any) (any, error) {
		second = RequestIDFromContext(ctx)
		return handler(ctx, req)
	})

	assert.NotEqual(t, first, second)
}

func TestStreamRequestIDInterceptor_PropagatesThroughWrappedStream(t *testing.T) {
	interceptor := StreamRequestIDInterceptor()
	info := &grpc.StreamServerInfo{FullMethod: "/exposerpc.ExposeRPC/InvokeCallableStream"}

	var seen string
	handler := func(srv any, ss grpc.ServerStream) error {
		seen = RequestIDFromContext(ss.Context())
		return nil
	}

	stream := &mockServerStream{ctx: context.Background()}
	err := interceptor(nil, stream, info, handler)

	require.NoError(t, err)
	assert.NotEmpty(t, seen)
}

func TestRecoveryInterceptor_Panic(t *testing.T) {
	logger := &testLogger{}
	interceptor := RecoveryInterceptor(logger)

	info := &grpc.UnaryServerInfo{FullMethod: "/exposerpc.ExposeRPC/InvokeCallable"}
	handler := func(ctx context.Context, req any) (any, error) {
		panic("test panic")
	}

	resp, err := interceptor(context.Background(), "request", info, handler)

	require.Error(t, err)
	assert.Nil(t, resp)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Contains(t, st.Message(), "test panic")
}

func TestChainUnaryInterceptors_Order(t *testing.T) {
	var order []string

	first := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		order = append(order, "before1")
		resp, err := handler(ctx, req)
		order = append(order, "after1")
		return resp, err
	}
	second := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		order = append(order, "before2")
		resp, err := handler(ctx, req)
		order = append(order, "after2")
		return resp, err
	}

	chain := ChainUnaryInterceptors(first, second)
	info := &grpc.UnaryServerInfo{FullMethod: "/exposerpc.ExposeRPC/InvokeCallable"}
	handler := func(ctx context.Context, req any) (any, error) {
		order = append(order, "handler")
		return "response", nil
	}

	resp, err := chain(context.Background(), "request", info, handler)

	require.NoError(t, err)
	assert.Equal(t, "response", resp)
	assert.Equal(t, []string{"before1", "before2", "handler", "after2", "after1"}, order)
}

func TestChainUnaryInterceptors_Error(t *testing.T) {
	chain := ChainUnaryInterceptors(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(ctx, req)
	})

	info := &grpc.UnaryServerInfo{FullMethod: "/exposerpc.ExposeRPC/InvokeCallable"}
	handler := func(ctx context.Context, req any) (any, error) {
		return nil, errors.New("handler error")
	}

	resp, err := chain(context.Background(), "request", info, handler)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "handler error")
}

func TestServerOptions_ReturnsInterceptors(t *testing.T) {
	opts := ServerOptions(NoopLogger())
	assert.Len(t, opts, 2)
}
